package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"ecommerce-backend/config"
)

var DB *sql.DB

func InitDB() error {
	cfg := config.LoadConfig()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return err
	}

	DB = db
	return createTables()
}

func CloseDB() {
	if DB != nil {
		err := DB.Close()
		if err != nil {
			return
		}
	}
}

func createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			role_id INT NOT NULL,
			UNIQUE KEY uniq_user_role (user_id, role_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS addresses (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			street VARCHAR(255) NOT NULL,
			city VARCHAR(100) NOT NULL,
			state VARCHAR(100) NOT NULL,
			country VARCHAR(100) NOT NULL,
			zip_code VARCHAR(20) NOT NULL,
			is_default_shipping BOOLEAN NOT NULL DEFAULT FALSE,
			default_marker TINYINT AS (IF(is_default_shipping, 1, NULL)) STORED,
			UNIQUE KEY uniq_user_default_shipping (user_id, default_marker),
			INDEX idx_addresses_user (user_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			category_id INT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DECIMAL(10,2) NOT NULL,
			sku VARCHAR(100) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS product_variants (
			id INT AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			sku VARCHAR(100) NOT NULL,
			stock_quantity INT NOT NULL CHECK (stock_quantity >= 0),
			price_override DECIMAL(10,2) NULL,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			cart_id INT NOT NULL,
			product_variant_id INT NOT NULL,
			quantity INT NOT NULL,
			UNIQUE KEY uniq_cart_variant (cart_id, product_variant_id),
			FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE,
			FOREIGN KEY (product_variant_id) REFERENCES product_variants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(50) NOT NULL,
			transaction_id VARCHAR(255) NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_payments_user (user_id),
			INDEX idx_payments_status (status),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS refunds (
			id INT AUTO_INCREMENT PRIMARY KEY,
			payment_id INT NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at DATETIME NOT NULL,
			INDEX idx_refunds_payment (payment_id),
			INDEX idx_refunds_status (status),
			FOREIGN KEY (payment_id) REFERENCES payments(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			total_amount DECIMAL(10,2) NOT NULL,
			shipping_address_id INT NOT NULL,
			payment_id INT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_orders_user (user_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			product_variant_id INT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			price_at_order DECIMAL(10,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			action VARCHAR(255) NOT NULL,
			details JSON,
			created_at DATETIME NOT NULL,
			INDEX idx_audit_user_time (user_id, created_at),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
