package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"ecommerce-backend/rabbitmq"
	"ecommerce-backend/services"
)

// 超过这个金额的订单事件按高优先级投递
var bigOrderThreshold = decimal.NewFromInt(1000)

// 下单后多久检查支付状态
var paymentCheckDelay = 15 * time.Minute

func SetPaymentCheckDelay(d time.Duration) {
	if d > 0 {
		paymentCheckDelay = d
	}
}

var (
	rabbitMQ         *rabbitmq.RabbitMQ
	orderService     *services.OrderService
	refundService    *services.RefundService
	cartService      *services.CartService
	addressService   *services.AddressService
	userService      *services.UserService
	auditService     *services.AuditService
	inventoryService *services.InventoryService
)

func SetRabbitMQ(rmq *rabbitmq.RabbitMQ) {
	rabbitMQ = rmq
}

type Services struct {
	Orders    *services.OrderService
	Refunds   *services.RefundService
	Carts     *services.CartService
	Addresses *services.AddressService
	Users     *services.UserService
	Audit     *services.AuditService
	Inventory *services.InventoryService
}

func SetServices(s Services) {
	orderService = s.Orders
	refundService = s.Refunds
	cartService = s.Carts
	addressService = s.Addresses
	userService = s.Users
	auditService = s.Audit
	inventoryService = s.Inventory
}

// 服务层错误到 HTTP 状态码的映射，结构化细节随响应给出
func writeServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		stockErr      *services.InsufficientStockError
		overRefundErr *services.OverRefundError
		stateErr      *services.InvalidStateError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":              "Insufficient stock",
			"product_variant_id": stockErr.ProductVariantID,
			"available":          stockErr.Available,
			"requested":          stockErr.Requested,
		})
	case errors.As(err, &overRefundErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Refund amount exceeds remaining refundable balance",
			"remaining": overRefundErr.Remaining.String(),
		})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Msg})
	case errors.Is(err, services.ErrDuplicateItem):
		c.JSON(http.StatusConflict, gin.H{"error": "Product already in cart"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Concurrent update conflict, retry the request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
