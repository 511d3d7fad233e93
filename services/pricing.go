package services

import (
	"github.com/shopspring/decimal"

	"ecommerce-backend/models"
)

// ResolvePrice 下单瞬间的有效单价：有覆盖价用覆盖价，否则用商品目录价
func ResolvePrice(variant *models.ProductVariant) decimal.Decimal {
	if variant.PriceOverride != nil {
		return *variant.PriceOverride
	}
	return variant.ProductPrice
}
