package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-backend/models"
)

// 受限的订单状态流转表，只有 admin/warehouse 能触发
var orderTransitions = map[string][]string{
	models.OrderStatusPending: {models.OrderStatusPaid, models.OrderStatusCancelled},
	models.OrderStatusPaid:    {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped: {models.OrderStatusDelivered},
}

type OrderService struct {
	DB *sql.DB
}

// PlaceOrder 下单：校验、逐项定价+扣库存、落订单和明细，全程单事务。
// 任何一项失败整单回滚，库存不留半扣，订单不留半条。
func (s *OrderService) PlaceOrder(ctx context.Context, caller Identity, req models.PlaceOrderRequest) (*models.Order, error) {
	// 角色检查先行，其他工作一概不做
	if !caller.HasRole(RoleCustomer) {
		return nil, ErrForbidden
	}
	if len(req.Items) == 0 {
		return nil, &ValidationError{Msg: "order must contain at least one item"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Msg: "quantity must be at least 1"}
		}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ok, err := addressExists(ctx, tx, req.ShippingAddressID, caller.UserID)
	if err != nil {
		return nil, classifyTxError(err)
	}
	if !ok {
		return nil, &ValidationError{Msg: "unknown shipping address"}
	}

	now := time.Now()
	order := &models.Order{
		UserID:            caller.UserID,
		Status:            models.OrderStatusPending,
		ShippingAddressID: req.ShippingAddressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 按提交顺序逐项处理：先定价快照，再原子扣库存
	total := decimal.Zero
	for _, item := range req.Items {
		variant, err := loadVariant(ctx, tx, item.ProductVariantID)
		if err != nil {
			return nil, classifyTxError(err)
		}
		if err := reserveStock(ctx, tx, item.ProductVariantID, item.Quantity); err != nil {
			return nil, classifyTxError(err)
		}

		price := ResolvePrice(variant)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		order.Items = append(order.Items, models.OrderItem{
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
			PriceAtOrder:     price,
		})
	}
	order.TotalAmount = total

	result, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, status, total_amount, shipping_address_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		order.UserID, order.Status, order.TotalAmount.String(), order.ShippingAddressID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, classifyTxError(err)
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = int(orderID)

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		itemResult, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_variant_id, quantity, price_at_order) VALUES (?, ?, ?, ?)",
			order.ID, order.Items[i].ProductVariantID, order.Items[i].Quantity, order.Items[i].PriceAtOrder.String(),
		)
		if err != nil {
			return nil, classifyTxError(err)
		}
		itemID, err := itemResult.LastInsertId()
		if err != nil {
			return nil, err
		}
		order.Items[i].ID = int(itemID)
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxError(err)
	}
	return order, nil
}

func loadVariant(ctx context.Context, ex execer, variantID int) (*models.ProductVariant, error) {
	var (
		variant  models.ProductVariant
		override decimal.NullDecimal
	)
	err := ex.QueryRowContext(ctx, `
		SELECT pv.id, pv.product_id, pv.stock_quantity, pv.price_override, p.price
		FROM product_variants pv
		JOIN products p ON p.id = pv.product_id
		WHERE pv.id = ?
	`, variantID).Scan(&variant.ID, &variant.ProductID, &variant.StockQuantity, &override, &variant.ProductPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if override.Valid {
		variant.PriceOverride = &override.Decimal
	}
	return &variant, nil
}

// GetOrder 查单（含明细），非本人需要 admin
func (s *OrderService) GetOrder(ctx context.Context, caller Identity, orderID int) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !Authorize(caller, order.UserID, false, OwnerOrAdmin) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID int) (*models.Order, error) {
	order := &models.Order{}
	var paymentID sql.NullInt64
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, user_id, status, total_amount, shipping_address_id, payment_id, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, orderID).Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount,
		&order.ShippingAddressID, &paymentID, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if paymentID.Valid {
		pid := int(paymentID.Int64)
		order.PaymentID = &pid
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, order_id, product_variant_id, quantity, price_at_order
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductVariantID, &item.Quantity, &item.PriceAtOrder); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

// ListOrders 按用户列单，admin 看全部。一把 JOIN 查出来再按订单分组。
func (s *OrderService) ListOrders(ctx context.Context, caller Identity) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.total_amount, o.shipping_address_id, o.created_at, o.updated_at,
		       oi.id, oi.product_variant_id, oi.quantity, oi.price_at_order
		FROM orders o
		JOIN order_items oi ON o.id = oi.order_id
	`
	var (
		rows *sql.Rows
		err  error
	)
	if caller.IsAdmin || caller.HasRole(RoleAdmin) {
		rows, err = s.DB.QueryContext(ctx, query+" ORDER BY o.created_at DESC, oi.id ASC")
	} else {
		rows, err = s.DB.QueryContext(ctx, query+" WHERE o.user_id = ? ORDER BY o.created_at DESC, oi.id ASC", caller.UserID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ordersMap := make(map[int]*models.Order)
	var ordered []*models.Order
	for rows.Next() {
		var (
			order models.Order
			item  models.OrderItem
		)
		if err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount,
			&order.ShippingAddressID, &order.CreatedAt, &order.UpdatedAt,
			&item.ID, &item.ProductVariantID, &item.Quantity, &item.PriceAtOrder); err != nil {
			return nil, err
		}
		item.OrderID = order.ID

		existing, ok := ordersMap[order.ID]
		if !ok {
			existing = &order
			ordersMap[order.ID] = existing
			ordered = append(ordered, existing)
		}
		existing.Items = append(existing.Items, item)
	}
	return ordered, rows.Err()
}

// UpdateStatus 订单状态流转，仅限 admin/warehouse，且必须在流转表内
func (s *OrderService) UpdateStatus(ctx context.Context, caller Identity, orderID int, newStatus string) (*models.Order, error) {
	if !Authorize(caller, 0, true, RoleIn(RoleAdmin, RoleWarehouse)) {
		return nil, ErrForbidden
	}
	switch newStatus {
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
	default:
		return nil, &ValidationError{Msg: "unknown order status"}
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT status FROM orders WHERE id = ?", orderID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyTxError(err)
	}

	allowed := false
	for _, t := range orderTransitions[current] {
		if t == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &InvalidStateError{Msg: "transition from " + current + " to " + newStatus + " is not allowed"}
	}

	// CAS 到刚读到的状态上：并发流转抢先改掉了就报冲突，不盲写
	result, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		newStatus, time.Now(), orderID, current)
	if err != nil {
		return nil, classifyTxError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConflict
	}

	// 取消订单要把预留的库存还回去
	if newStatus == models.OrderStatusCancelled {
		if err := releaseOrderStock(ctx, tx, orderID); err != nil {
			return nil, classifyTxError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxError(err)
	}
	return s.loadOrder(ctx, orderID)
}

func releaseOrderStock(ctx context.Context, tx *sql.Tx, orderID int) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT product_variant_id, quantity FROM order_items WHERE order_id = ?", orderID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type line struct {
		variantID int
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.variantID, &l.quantity); err != nil {
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, l := range lines {
		if err := restoreStock(ctx, tx, l.variantID, l.quantity); err != nil {
			return err
		}
	}
	return nil
}

// CancelIfUnpaid 支付检查事件到期时仍未支付就自动取消并归还库存。
// 返回是否真的取消了。
func (s *OrderService) CancelIfUnpaid(ctx context.Context, orderID int) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		models.OrderStatusCancelled, time.Now(), orderID, models.OrderStatusPending,
	)
	if err != nil {
		return false, classifyTxError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	if err := releaseOrderStock(ctx, tx, orderID); err != nil {
		return false, classifyTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return false, classifyTxError(err)
	}
	return true, nil
}
