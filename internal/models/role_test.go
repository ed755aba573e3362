package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storeapp/internal/models"
)

func TestNormalizeRole(t *testing.T) {
	cases := []struct {
		raw  string
		want models.Role
	}{
		{"admin", models.RoleAdmin},
		{"ADMIN", models.RoleAdmin},
		{"user", models.RoleUser},
		{"", models.RoleUser},
		{"store_owner", models.RoleStoreOwner},
		{"Store-Owner", models.RoleStoreOwner},
		{"store owner", models.RoleStoreOwner},
		{"STOREOWNER", models.RoleStoreOwner},
		{"StoreOwner", models.RoleStoreOwner},
		{"something-else", models.RoleUser},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, models.NormalizeRole(tc.raw), "raw=%q", tc.raw)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, models.RoleAdmin.Valid())
	assert.True(t, models.RoleUser.Valid())
	assert.True(t, models.RoleStoreOwner.Valid())
	assert.False(t, models.Role("superuser").Valid())
}
