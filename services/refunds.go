package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-backend/models"
)

type RefundService struct {
	DB *sql.DB
}

// CreateRefund 校验并登记一笔退款，状态固定为 pending。
// 余额校验和落库在同一事务里，对 payment 行加排他锁，
// 并发退款不可能合计超过原支付金额。Payment 本身不动，
// 后续 approved/failed 的流转归外部结算方。
func (s *RefundService) CreateRefund(ctx context.Context, caller Identity, paymentID int, amount decimal.Decimal) (*models.Refund, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Msg: "refund amount must be greater than zero"}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 空写拿 payment 行的排他锁，把并发退款串行化到提交点。
	// 必须是事务里的第一条语句：REPEATABLE READ 的一致性快照在
	// 首次读时建立，锁拿到手之后再读，别的事务刚提交的退款才可见
	if _, err := tx.ExecContext(ctx,
		"UPDATE payments SET id = id WHERE id = ?", paymentID); err != nil {
		return nil, classifyTxError(err)
	}

	var payment models.Payment
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, amount, status FROM payments WHERE id = ?", paymentID,
	).Scan(&payment.ID, &payment.UserID, &payment.Amount, &payment.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyTxError(err)
	}

	// 归属检查先于任何余额计算
	if !Authorize(caller, payment.UserID, true, OwnerOrAdmin) {
		return nil, ErrForbidden
	}
	if payment.Status != models.PaymentStatusSuccess {
		return nil, &InvalidStateError{Msg: "only successful payments can be refunded"}
	}

	var refundedStr sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM refunds WHERE payment_id = ? AND status <> ?",
		paymentID, models.RefundStatusRejected,
	).Scan(&refundedStr)
	if err != nil {
		return nil, classifyTxError(err)
	}
	alreadyRefunded := decimal.Zero
	if refundedStr.Valid {
		alreadyRefunded, err = decimal.NewFromString(refundedStr.String)
		if err != nil {
			return nil, err
		}
	}

	remaining := payment.Amount.Sub(alreadyRefunded)
	if amount.GreaterThan(remaining) {
		return nil, &OverRefundError{Remaining: remaining}
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO refunds (payment_id, amount, status, created_at) VALUES (?, ?, ?, ?)",
		paymentID, amount.String(), models.RefundStatusPending, now,
	)
	if err != nil {
		return nil, classifyTxError(err)
	}
	refundID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxError(err)
	}

	return &models.Refund{
		ID:        int(refundID),
		PaymentID: paymentID,
		Amount:    amount,
		Status:    models.RefundStatusPending,
		CreatedAt: now,
	}, nil
}

// GetPayment 查支付单（含退款记录），非本人需要 admin
func (s *RefundService) GetPayment(ctx context.Context, caller Identity, paymentID int) (*models.Payment, error) {
	var payment models.Payment
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, amount, status, payment_method, transaction_id, created_at, updated_at
		FROM payments
		WHERE id = ?
	`, paymentID).Scan(&payment.ID, &payment.UserID, &payment.Amount, &payment.Status,
		&payment.PaymentMethod, &payment.TransactionID, &payment.CreatedAt, &payment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !Authorize(caller, payment.UserID, false, OwnerOrAdmin) {
		return nil, ErrForbidden
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, payment_id, amount, status, created_at FROM refunds WHERE payment_id = ? ORDER BY id ASC",
		paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.Refund
		if err := rows.Scan(&r.ID, &r.PaymentID, &r.Amount, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		payment.Refunds = append(payment.Refunds, r)
	}
	return &payment, rows.Err()
}

// ListPayments 按用户列支付单，admin 看全部
func (s *RefundService) ListPayments(ctx context.Context, caller Identity) ([]*models.Payment, error) {
	query := `
		SELECT id, user_id, amount, status, payment_method, transaction_id, created_at, updated_at
		FROM payments
	`
	var (
		rows *sql.Rows
		err  error
	)
	if caller.IsAdmin || caller.HasRole(RoleAdmin) {
		rows, err = s.DB.QueryContext(ctx, query+" ORDER BY created_at DESC")
	} else {
		rows, err = s.DB.QueryContext(ctx, query+" WHERE user_id = ? ORDER BY created_at DESC", caller.UserID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &p.Status,
			&p.PaymentMethod, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}
