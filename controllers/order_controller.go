package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ecommerce-backend/middlewares"
	"ecommerce-backend/models"
)

func CreateOrder(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := orderService.PlaceOrder(c.Request.Context(), caller, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	auditService.Record(c.Request.Context(), caller.UserID, "order.placed", map[string]any{
		"order_id": order.ID,
		"total":    order.TotalAmount.String(),
	})

	c.JSON(http.StatusCreated, order)

	// 事务提交成功后发送事件
	if rabbitMQ != nil {
		// 大额订单高优先级
		priority := 5
		if order.TotalAmount.GreaterThan(bigOrderThreshold) {
			priority = 9
		}

		event := models.OrderEvent{
			EventID:  uuid.NewString(),
			OrderID:  order.ID,
			UserID:   order.UserID,
			Type:     "created",
			Status:   order.Status,
			Total:    order.TotalAmount.String(),
			Occurred: time.Now(),
		}
		if err := rabbitMQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		// 延迟支付检查事件，到期仍未支付自动取消
		check := event
		check.EventID = uuid.NewString()
		check.Type = "payment_check"
		if err := rabbitMQ.PublishDelayedEvent(check, paymentCheckDelay); err != nil {
			log.Printf("Failed to publish delayed payment check event: %v", err)
		}
	}
}

func GetUserOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orders, err := orderService.ListOrders(c.Request.Context(), caller)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func GetOrderDetails(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("details", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := orderService.GetOrder(c.Request.Context(), caller, orderID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func UpdateOrderStatus(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update_status", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var request struct {
		Status string `json:"status" binding:"required,oneof=pending paid shipped delivered cancelled"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := orderService.UpdateStatus(c.Request.Context(), caller, orderID, request.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	auditService.Record(c.Request.Context(), caller.UserID, "order.status_updated", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order_id": orderID})

	if rabbitMQ != nil {
		// 取消订单高优先级
		priority := 5
		if request.Status == models.OrderStatusCancelled {
			priority = 8
		}

		event := models.OrderEvent{
			EventID:  uuid.NewString(),
			OrderID:  order.ID,
			UserID:   order.UserID,
			Type:     "status_updated",
			Status:   order.Status,
			Total:    order.TotalAmount.String(),
			Occurred: time.Now(),
		}
		if err := rabbitMQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order updated event: %v", err)
		}
	}
}
