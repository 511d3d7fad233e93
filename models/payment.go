package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// 支付状态（由外部支付服务驱动）
const (
	PaymentStatusPending  = "pending"
	PaymentStatusSuccess  = "success"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 退款状态，pending 之后的流转归结算方所有
const (
	RefundStatusPending  = "pending"
	RefundStatusApproved = "approved"
	RefundStatusFailed   = "failed"
	RefundStatusRejected = "rejected"
)

type Payment struct {
	ID            int             `json:"id"`
	UserID        int             `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Refunds       []Refund        `json:"refunds"`
}

type Refund struct {
	ID        int             `json:"id"`
	PaymentID int             `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// 退款请求
type RefundRequest struct {
	PaymentID int             `json:"payment" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

type RefundEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"` // refund_requested
	RefundID  int       `json:"refund_id"`
	PaymentID int       `json:"payment_id"`
	Amount    string    `json:"amount"`
	Occurred  time.Time `json:"occurred"`
}
