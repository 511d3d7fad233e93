package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ecommerce-backend/models"
)

type CartService struct {
	DB *sql.DB
}

// AddToCart 往用户的购物车加一个 variant。
// 同一 (cart, variant) 只允许一条，重复加报 ErrDuplicateItem，
// 唯一索引兜底并发下的重复插入。
func (s *CartService) AddToCart(ctx context.Context, caller Identity, variantID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cartID, err := getOrCreateCart(ctx, tx, caller.UserID)
	if err != nil {
		return nil, classifyTxError(err)
	}

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM cart_items WHERE cart_id = ? AND product_variant_id = ?",
		cartID, variantID,
	).Scan(&exists)
	if err != nil {
		return nil, classifyTxError(err)
	}
	if exists > 0 {
		return nil, ErrDuplicateItem
	}

	var variantCount int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM product_variants WHERE id = ?", variantID,
	).Scan(&variantCount)
	if err != nil {
		return nil, classifyTxError(err)
	}
	if variantCount == 0 {
		return nil, ErrNotFound
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO cart_items (cart_id, product_variant_id, quantity) VALUES (?, ?, ?)",
		cartID, variantID, quantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateItem
		}
		return nil, classifyTxError(err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxError(err)
	}
	return &models.CartItem{
		ID:               int(itemID),
		CartID:           cartID,
		ProductVariantID: variantID,
		Quantity:         quantity,
	}, nil
}

// 每个用户一个购物车，没有就建
func getOrCreateCart(ctx context.Context, ex execer, userID int) (int, error) {
	var cartID int
	err := ex.QueryRowContext(ctx, "SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	if err == nil {
		return cartID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	now := time.Now()
	result, err := ex.ExecContext(ctx,
		"INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)", userID, now, now)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetCart 取用户购物车（含条目）
func (s *CartService) GetCart(ctx context.Context, caller Identity) (*models.Cart, error) {
	var cart models.Cart
	err := s.DB.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?", caller.UserID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		"SELECT id, cart_id, product_variant_id, quantity FROM cart_items WHERE cart_id = ? ORDER BY id ASC",
		cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductVariantID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}
