package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []string  `json:"roles"`
}

type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}
