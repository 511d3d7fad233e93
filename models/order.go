package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID                int             `json:"id"`
	UserID            int             `json:"user_id"`
	Status            string          `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ShippingAddressID int             `json:"shipping_address_id"`
	PaymentID         *int            `json:"payment_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Items             []OrderItem     `json:"items"`
}

type OrderItem struct {
	ID               int             `json:"id"`
	OrderID          int             `json:"order_id"`
	ProductVariantID int             `json:"product_variant_id"`
	Quantity         int             `json:"quantity"`
	PriceAtOrder     decimal.Decimal `json:"price_at_order"`
}

// 下单请求
type PlaceOrderRequest struct {
	ShippingAddressID int                `json:"shipping_address" binding:"required"`
	Items             []OrderItemRequest `json:"items" binding:"required"`
}

type OrderItemRequest struct {
	ProductVariantID int `json:"product_variant" binding:"required"`
	Quantity         int `json:"quantity" binding:"required"`
}

type OrderEvent struct {
	EventID  string    `json:"event_id"`
	OrderID  int       `json:"order_id"`
	UserID   int       `json:"user_id"`
	Type     string    `json:"type"` // created, status_updated, payment_check
	Status   string    `json:"status"`
	Total    string    `json:"total"`
	Occurred time.Time `json:"occurred"`
}
