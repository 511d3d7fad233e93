package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"ecommerce-backend/config"
)

type TokenIdentity struct {
	UserID  int
	Roles   []string
	IsAdmin bool
}

// ParseToken 解出调用方身份三元组 (user_id, roles, is_admin)
func ParseToken(tokenString string) (*TokenIdentity, error) {
	cfg := config.LoadConfig()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, errors.New("missing user_id claim")
	}

	identity := &TokenIdentity{UserID: int(userID)}
	if isAdmin, ok := claims["is_admin"].(bool); ok {
		identity.IsAdmin = isAdmin
	}
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if role, ok := r.(string); ok {
				identity.Roles = append(identity.Roles, role)
			}
		}
	}
	return identity, nil
}
