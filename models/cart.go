package models

import "time"

type Cart struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

type CartItem struct {
	ID               int `json:"id"`
	CartID           int `json:"cart_id"`
	ProductVariantID int `json:"product_variant_id"`
	Quantity         int `json:"quantity"`
}

type AddCartItemRequest struct {
	ProductVariantID int `json:"product_variant" binding:"required"`
	Quantity         int `json:"quantity"`
}
