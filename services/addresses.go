package services

import (
	"context"
	"database/sql"
	"errors"
)

func addressExists(ctx context.Context, ex execer, addressID, userID int) (bool, error) {
	var count int
	err := ex.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM addresses WHERE id = ? AND user_id = ?", addressID, userID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type AddressService struct {
	DB *sql.DB
}

// SetDefaultShipping 把目标地址设成默认收货地址：
// 同一事务里先清掉该用户所有默认标记再设置目标，
// 数据库上的条件唯一索引兜底“每用户至多一个默认”。
func (s *AddressService) SetDefaultShipping(ctx context.Context, caller Identity, addressID int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var ownerID int
	err = tx.QueryRowContext(ctx,
		"SELECT user_id FROM addresses WHERE id = ?", addressID,
	).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return classifyTxError(err)
	}
	if !Authorize(caller, ownerID, true, OwnerOrAdmin) {
		return ErrForbidden
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE addresses SET is_default_shipping = ? WHERE user_id = ?", false, ownerID); err != nil {
		return classifyTxError(err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE addresses SET is_default_shipping = ? WHERE id = ?", true, addressID); err != nil {
		return classifyTxError(err)
	}

	if err := tx.Commit(); err != nil {
		return classifyTxError(err)
	}
	return nil
}
