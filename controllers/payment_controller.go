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

func CreateRefund(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRefundOperation("create", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refund, err := refundService.CreateRefund(c.Request.Context(), caller, req.PaymentID, req.Amount)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	auditService.Record(c.Request.Context(), caller.UserID, "refund.requested", map[string]any{
		"refund_id":  refund.ID,
		"payment_id": refund.PaymentID,
		"amount":     refund.Amount.String(),
	})

	c.JSON(http.StatusCreated, refund)

	if rabbitMQ != nil {
		event := models.RefundEvent{
			EventID:   uuid.NewString(),
			Type:      "refund_requested",
			RefundID:  refund.ID,
			PaymentID: refund.PaymentID,
			Amount:    refund.Amount.String(),
			Occurred:  time.Now(),
		}
		if err := rabbitMQ.PublishRefundEvent(event); err != nil {
			log.Printf("Failed to publish refund requested event: %v", err)
		}
	}
}

func GetUserPayments(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRefundOperation("list_payments", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	payments, err := refundService.ListPayments(c.Request.Context(), caller)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

func GetPaymentDetails(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordRefundOperation("payment_details", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID"})
		return
	}

	payment, err := refundService.GetPayment(c.Request.Context(), caller, paymentID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
