package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/togglekeep/togglekeep/internal/models"
)

func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic(OpLogin))
	assert.True(t, IsPublic(OpFlagRead))
	assert.False(t, IsPublic(OpFlagCreate))
	assert.False(t, IsPublic(OpRegister))
	assert.False(t, IsPublic("made.up"))
}

func TestAuthorize(t *testing.T) {
	// Test 1: admin-only operations
	assert.True(t, Authorize(OpFlagCreate, models.RoleAdmin))
	assert.False(t, Authorize(OpFlagCreate, models.RoleUser))
	assert.True(t, Authorize(OpRegister, models.RoleAdmin))
	assert.False(t, Authorize(OpUserList, models.RoleUser))

	// Test 2: operations open to both roles
	assert.True(t, Authorize(OpFlagToggle, models.RoleAdmin))
	assert.True(t, Authorize(OpFlagToggle, models.RoleUser))
	assert.True(t, Authorize(OpFlagToggleByTag, models.RoleUser))

	// Test 3: public operations pass for any role, including none
	assert.True(t, Authorize(OpLogin, ""))
	assert.True(t, Authorize(OpFlagRead, "whatever"))

	// Test 4: unknown operations and roles are denied
	assert.False(t, Authorize("made.up", models.RoleAdmin))
	assert.False(t, Authorize(OpFlagCreate, "superadmin"))
}
