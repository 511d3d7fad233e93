package services

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// 测试用的 sqlite 建表语句，与生产 MySQL schema 同构
var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_admin BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE user_roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		role_id INTEGER NOT NULL,
		UNIQUE (user_id, role_id)
	)`,
	`CREATE TABLE addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		street TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		country TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		is_default_shipping BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX uniq_user_default_shipping ON addresses(user_id) WHERE is_default_shipping = 1`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_id INTEGER,
		name TEXT NOT NULL,
		description TEXT,
		price DECIMAL(10,2) NOT NULL,
		sku TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE product_variants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		sku TEXT NOT NULL,
		stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
		price_override DECIMAL(10,2)
	)`,
	`CREATE TABLE carts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE cart_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cart_id INTEGER NOT NULL,
		product_variant_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		UNIQUE (cart_id, product_variant_id)
	)`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payment_method TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE refunds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		payment_id INTEGER NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		total_amount DECIMAL(10,2) NOT NULL,
		shipping_address_id INTEGER NOT NULL,
		payment_id INTEGER,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		product_variant_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		price_at_order DECIMAL(10,2) NOT NULL
	)`,
	`CREATE TABLE audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at DATETIME NOT NULL
	)`,
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	dsn := "file:" + path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO users (email, is_active, is_admin, created_at) VALUES (?, 1, 0, ?)",
		email, time.Now())
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedAddress(t *testing.T, db *sql.DB, userID int, isDefault bool) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO addresses (user_id, street, city, state, country, zip_code, is_default_shipping) VALUES (?, '1 Main St', 'Lagos', 'LA', 'NG', '100001', ?)",
		userID, isDefault)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedProduct(t *testing.T, db *sql.DB, price string) int {
	t.Helper()
	now := time.Now()
	result, err := db.Exec(
		"INSERT INTO products (name, description, price, sku, is_active, created_at, updated_at) VALUES ('Widget', '', ?, 'SKU-1', 1, ?, ?)",
		price, now, now)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedVariant(t *testing.T, db *sql.DB, productID, stock int, priceOverride *string) int {
	t.Helper()
	var override any
	if priceOverride != nil {
		override = *priceOverride
	}
	result, err := db.Exec(
		"INSERT INTO product_variants (product_id, name, sku, stock_quantity, price_override) VALUES (?, 'Variant', 'SKU-V', ?, ?)",
		productID, stock, override)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedPayment(t *testing.T, db *sql.DB, userID int, amount, status, txnID string) int {
	t.Helper()
	now := time.Now()
	result, err := db.Exec(
		"INSERT INTO payments (user_id, amount, status, payment_method, transaction_id, created_at, updated_at) VALUES (?, ?, ?, 'card', ?, ?, ?)",
		userID, amount, status, txnID, now, now)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func seedRefund(t *testing.T, db *sql.DB, paymentID int, amount, status string) int {
	t.Helper()
	result, err := db.Exec(
		"INSERT INTO refunds (payment_id, amount, status, created_at) VALUES (?, ?, ?, ?)",
		paymentID, amount, status, time.Now())
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func variantStock(t *testing.T, db *sql.DB, variantID int) int {
	t.Helper()
	var stock int
	err := db.QueryRow("SELECT stock_quantity FROM product_variants WHERE id = ?", variantID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}

func customer(userID int) Identity {
	return Identity{UserID: userID, Roles: []string{RoleCustomer}}
}
