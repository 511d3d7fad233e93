package services

import (
	"context"
	"database/sql"
	"time"

	"ecommerce-backend/models"
)

// 角色常量
const (
	RoleAdmin     = "admin"
	RoleCustomer  = "customer"
	RoleWarehouse = "warehouse"
	RoleVendor    = "vendor"
	RoleStaff     = "staff"
)

func AllRoles() []string {
	return []string{RoleAdmin, RoleCustomer, RoleWarehouse, RoleVendor, RoleStaff}
}

// Identity 外部认证层解析出的调用方身份，core 只消费不生产
type Identity struct {
	UserID  int
	Roles   []string
	IsAdmin bool
}

func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Policy 权限校验策略，显式组合代替散落在各处的布尔判断
type Policy func(caller Identity, ownerID int, write bool) bool

func OwnerOrAdmin(caller Identity, ownerID int, _ bool) bool {
	return caller.IsAdmin || caller.HasRole(RoleAdmin) || caller.UserID == ownerID
}

func RoleIn(roles ...string) Policy {
	return func(caller Identity, _ int, _ bool) bool {
		if caller.IsAdmin {
			return true
		}
		for _, role := range roles {
			if caller.HasRole(role) {
				return true
			}
		}
		return false
	}
}

func ReadOnlyOrAdmin(caller Identity, _ int, write bool) bool {
	if !write {
		return true
	}
	return caller.IsAdmin || caller.HasRole(RoleAdmin)
}

func Authorize(caller Identity, ownerID int, write bool, policies ...Policy) bool {
	for _, p := range policies {
		if !p(caller, ownerID, write) {
			return false
		}
	}
	return true
}

// ResolveInitialRole 注册时的初始角色，集中在一个纯函数里决定。
// 非管理员只能拿到 customer，未知角色也回落到 customer。
func ResolveInitialRole(requested string, requester Identity) string {
	if requested == "" || requested == RoleCustomer {
		return RoleCustomer
	}
	valid := false
	for _, r := range AllRoles() {
		if requested == r {
			valid = true
			break
		}
	}
	if !valid {
		return RoleCustomer
	}
	if requester.IsAdmin || requester.HasRole(RoleAdmin) {
		return requested
	}
	return RoleCustomer
}

type UserService struct {
	DB *sql.DB
}

// CreateUser 两段式建号：先落用户行，返回待指派角色，
// 由同一个调用方紧接着调 AssignRole，不走任何隐式钩子。
func (s *UserService) CreateUser(ctx context.Context, caller Identity, req models.CreateUserRequest) (*models.User, string, error) {
	if req.Email == "" {
		return nil, "", &ValidationError{Msg: "email is required"}
	}

	now := time.Now()
	result, err := s.DB.ExecContext(ctx,
		"INSERT INTO users (email, is_active, is_admin, created_at) VALUES (?, ?, ?, ?)",
		req.Email, true, false, now,
	)
	if err != nil {
		return nil, "", err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:        int(id),
		Email:     req.Email,
		IsActive:  true,
		CreatedAt: now,
	}
	return user, ResolveInitialRole(req.Role, caller), nil
}

func (s *UserService) AssignRole(ctx context.Context, user *models.User, role string) error {
	var roleID int
	err := s.DB.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = ?", role).Scan(&roleID)
	if err != nil {
		if err == sql.ErrNoRows {
			result, insErr := s.DB.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", role)
			if insErr != nil {
				return insErr
			}
			id, insErr := result.LastInsertId()
			if insErr != nil {
				return insErr
			}
			roleID = int(id)
		} else {
			return err
		}
	}

	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", user.ID, roleID); err != nil {
		return err
	}
	user.Roles = append(user.Roles, role)
	return nil
}
