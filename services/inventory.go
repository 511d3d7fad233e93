package services

import (
	"context"
	"database/sql"
	"errors"
)

// reserveStock 在调用方事务内原子扣减库存。
// 条件 UPDATE 即 compare-and-swap：并发扣减同一 variant 不会把库存扣成负数。
// 影响行数为 0 说明库存不够（或 variant 不存在），回查拿到当前余量用于报错。
func reserveStock(ctx context.Context, ex execer, variantID, quantity int) error {
	if quantity < 1 {
		return &ValidationError{Msg: "quantity must be at least 1"}
	}

	result, err := ex.ExecContext(ctx,
		"UPDATE product_variants SET stock_quantity = stock_quantity - ? WHERE id = ? AND stock_quantity >= ?",
		quantity, variantID, quantity,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var available int
	err = ex.QueryRowContext(ctx,
		"SELECT stock_quantity FROM product_variants WHERE id = ?", variantID,
	).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return &InsufficientStockError{
		ProductVariantID: variantID,
		Available:        available,
		Requested:        quantity,
	}
}

// restoreStock 归还已扣减的库存（订单取消时用）
func restoreStock(ctx context.Context, ex execer, variantID, quantity int) error {
	_, err := ex.ExecContext(ctx,
		"UPDATE product_variants SET stock_quantity = stock_quantity + ? WHERE id = ?",
		quantity, variantID,
	)
	return err
}

type InventoryService struct {
	DB *sql.DB
}

// Reserve 单独预留库存。失败不产生任何变更；
// 批量预留的部分回滚由下单事务负责，这里不做。
func (s *InventoryService) Reserve(ctx context.Context, variantID, quantity int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := reserveStock(ctx, tx, variantID, quantity); err != nil {
		_ = tx.Rollback()
		return classifyTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return classifyTxError(err)
	}
	return nil
}
