package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/middlewares"
	"ecommerce-backend/models"
)

func AddCartItem(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("add_item", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := cartService.AddToCart(c.Request.Context(), caller, req.ProductVariantID, req.Quantity)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func GetCart(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordCartOperation("get", status)
	}()
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cart, err := cartService.GetCart(c.Request.Context(), caller)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
