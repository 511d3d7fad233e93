package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	// 并发冲突（死锁/锁超时），调用方可整单重试
	ErrConflict      = errors.New("conflict, retry the request")
	ErrDuplicateItem = errors.New("product already in cart")
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// 库存不足，带上出问题的 variant 和数量边界
type InsufficientStockError struct {
	ProductVariantID int
	Available        int
	Requested        int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d: available %d, requested %d",
		e.ProductVariantID, e.Available, e.Requested)
}

// 超额退款，带上剩余可退金额
type OverRefundError struct {
	Remaining decimal.Decimal
}

func (e *OverRefundError) Error() string {
	return fmt.Sprintf("refund amount exceeds remaining refundable balance (%s)", e.Remaining)
}

type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return e.Msg
}
