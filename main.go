package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce-backend/config"
	"ecommerce-backend/consumers"
	"ecommerce-backend/controllers"
	"ecommerce-backend/database"
	"ecommerce-backend/middlewares"
	"ecommerce-backend/rabbitmq"
	"ecommerce-backend/services"
)

func main() {
	// 初始化数据库
	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	// 加载配置
	cfg := config.LoadConfig()

	// 初始化RabbitMQ
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	orderService := &services.OrderService{DB: database.DB}

	// 启动消息消费者
	consumer := &consumers.OrderConsumer{Orders: orderService}
	consumer.Start(rmq.Channel, cfg)

	controllers.SetRabbitMQ(rmq)
	if ttl, err := time.ParseDuration(cfg.PaymentCheckTTL); err == nil {
		controllers.SetPaymentCheckDelay(ttl)
	} else {
		log.Printf("Invalid PAYMENT_CHECK_TTL %q, using default", cfg.PaymentCheckTTL)
	}
	controllers.SetServices(controllers.Services{
		Orders:    orderService,
		Refunds:   &services.RefundService{DB: database.DB},
		Carts:     &services.CartService{DB: database.DB},
		Addresses: &services.AddressService{DB: database.DB},
		Users:     &services.UserService{DB: database.DB},
		Audit:     &services.AuditService{DB: database.DB},
		Inventory: &services.InventoryService{DB: database.DB},
	})

	// 创建Gin路由
	r := gin.Default()

	// 应用Prometheus中间件
	r.Use(middlewares.PrometheusMiddleware())

	// 暴露Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 需要认证的路由组
	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware())
	{
		authGroup.POST("/orders", controllers.CreateOrder)
		authGroup.GET("/orders", controllers.GetUserOrders)
		authGroup.GET("/orders/:id", controllers.GetOrderDetails)
		authGroup.PUT("/orders/:id/status", controllers.UpdateOrderStatus)

		authGroup.POST("/refunds", controllers.CreateRefund)
		authGroup.GET("/payments", controllers.GetUserPayments)
		authGroup.GET("/payments/:id", controllers.GetPaymentDetails)

		authGroup.GET("/cart", controllers.GetCart)
		authGroup.POST("/cart/items", controllers.AddCartItem)

		authGroup.PUT("/addresses/:id/default", controllers.SetDefaultShippingAddress)

		authGroup.POST("/users", controllers.CreateUser)
		authGroup.POST("/inventory/reserve", controllers.ReserveStock)
	}

	// 启动服务器
	port := ":8080"
	log.Printf("Ecommerce backend starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
