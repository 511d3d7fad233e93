package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/middlewares"
	"ecommerce-backend/services"
)

// ReserveStock 独立的库存预留入口，仅限 admin/warehouse（如线下单场景）
func ReserveStock(c *gin.Context) {
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if !services.Authorize(caller, 0, true, services.RoleIn(services.RoleAdmin, services.RoleWarehouse)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req struct {
		ProductVariantID int `json:"product_variant_id" binding:"required"`
		Quantity         int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := inventoryService.Reserve(c.Request.Context(), req.ProductVariantID, req.Quantity); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock reserved", "product_variant_id": req.ProductVariantID})
}
