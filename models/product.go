package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	CategoryID  *int            `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SKU         string          `json:"sku"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductVariant struct {
	ID            int              `json:"id"`
	ProductID     int              `json:"product_id"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	StockQuantity int              `json:"stock_quantity"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`

	// 下单时解析价格需要所属商品的目录价
	ProductPrice decimal.Decimal `json:"-"`
}
