package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/middlewares"
	"ecommerce-backend/models"
)

// CreateUser 建号走两段式：先落用户，再显式指派初始角色
func CreateUser(c *gin.Context) {
	caller, exists := middlewares.CallerIdentity(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, role, err := userService.CreateUser(c.Request.Context(), caller, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := userService.AssignRole(c.Request.Context(), user, role); err != nil {
		writeServiceError(c, err)
		return
	}

	auditService.Record(c.Request.Context(), caller.UserID, "user.created", map[string]any{
		"user_id": user.ID,
		"role":    role,
	})

	c.JSON(http.StatusCreated, user)
}
