package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-backend/models"
)

func TestResolveInitialRole(t *testing.T) {
	admin := Identity{UserID: 1, Roles: []string{RoleAdmin}}
	regular := Identity{UserID: 2, Roles: []string{RoleCustomer}}

	tests := []struct {
		name      string
		requested string
		requester Identity
		want      string
	}{
		{"empty request defaults to customer", "", regular, RoleCustomer},
		{"customer request is always granted", RoleCustomer, regular, RoleCustomer},
		{"unknown role falls back to customer", "superuser", admin, RoleCustomer},
		{"non-admin cannot request warehouse", RoleWarehouse, regular, RoleCustomer},
		{"admin can grant warehouse", RoleWarehouse, admin, RoleWarehouse},
		{"admin can grant staff", RoleStaff, admin, RoleStaff},
		{"is_admin flag counts as admin", RoleVendor, Identity{UserID: 3, IsAdmin: true}, RoleVendor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveInitialRole(tt.requested, tt.requester))
		})
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	owner := Identity{UserID: 7}
	other := Identity{UserID: 8}
	admin := Identity{UserID: 9, Roles: []string{RoleAdmin}}

	assert.True(t, OwnerOrAdmin(owner, 7, true))
	assert.False(t, OwnerOrAdmin(other, 7, true))
	assert.True(t, OwnerOrAdmin(admin, 7, true))
	assert.True(t, OwnerOrAdmin(Identity{UserID: 10, IsAdmin: true}, 7, true))
}

func TestRoleIn(t *testing.T) {
	policy := RoleIn(RoleAdmin, RoleWarehouse)

	assert.True(t, policy(Identity{Roles: []string{RoleWarehouse}}, 0, true))
	assert.False(t, policy(Identity{Roles: []string{RoleCustomer}}, 0, true))
	assert.True(t, policy(Identity{IsAdmin: true}, 0, true))
}

func TestReadOnlyOrAdmin(t *testing.T) {
	regular := Identity{UserID: 1, Roles: []string{RoleCustomer}}
	admin := Identity{UserID: 2, Roles: []string{RoleAdmin}}

	assert.True(t, ReadOnlyOrAdmin(regular, 0, false))
	assert.False(t, ReadOnlyOrAdmin(regular, 0, true))
	assert.True(t, ReadOnlyOrAdmin(admin, 0, true))
}

func TestAuthorize_ComposesPolicies(t *testing.T) {
	caller := Identity{UserID: 1, Roles: []string{RoleCustomer}}

	// 所有策略都要通过
	assert.True(t, Authorize(caller, 1, false, OwnerOrAdmin, ReadOnlyOrAdmin))
	assert.False(t, Authorize(caller, 1, true, OwnerOrAdmin, ReadOnlyOrAdmin))
	assert.False(t, Authorize(caller, 2, false, OwnerOrAdmin, ReadOnlyOrAdmin))
}

func TestUserService_TwoPhaseCreate(t *testing.T) {
	db := newTestDB(t)
	svc := &UserService{DB: db}
	ctx := context.Background()

	admin := Identity{UserID: 1, Roles: []string{RoleAdmin}}

	user, role, err := svc.CreateUser(ctx, admin, models.CreateUserRequest{Email: "new@example.com", Role: RoleWarehouse})
	require.NoError(t, err)
	assert.Equal(t, RoleWarehouse, role)
	assert.Empty(t, user.Roles)

	require.NoError(t, svc.AssignRole(ctx, user, role))
	assert.Equal(t, []string{RoleWarehouse}, user.Roles)

	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(1) FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.name = ?",
		user.ID, RoleWarehouse).Scan(&n))
	assert.Equal(t, 1, n)
}
