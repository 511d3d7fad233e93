package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ecommerce-backend/models"
)

func TestResolvePrice_UsesCatalogPrice(t *testing.T) {
	variant := &models.ProductVariant{
		ProductPrice: decimal.RequireFromString("19.99"),
	}
	assert.True(t, decimal.RequireFromString("19.99").Equal(ResolvePrice(variant)))
}

func TestResolvePrice_OverrideWins(t *testing.T) {
	override := decimal.RequireFromString("14.50")
	variant := &models.ProductVariant{
		ProductPrice:  decimal.RequireFromString("19.99"),
		PriceOverride: &override,
	}
	assert.True(t, override.Equal(ResolvePrice(variant)))
}
