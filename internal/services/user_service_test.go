package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/models"
)

func newTestUserService(t *testing.T) (*gorm.DB, *UserService) {
	db := setupTestDB(t)
	return db, NewUserService(db, NewAuditor(db, NewAuditService(db)))
}

func TestUserService_GetAll(t *testing.T) {
	db, service := newTestUserService(t)
	seedUser(t, db, "bob", models.RoleUser)
	alice := seedUser(t, db, "alice", models.RoleAdmin)
	alice.Active = false
	require.NoError(t, db.Save(alice).Error)

	users, err := service.GetAll()
	require.NoError(t, err)
	require.Len(t, users, 2)

	// Ordered by username, inactive accounts included.
	assert.Equal(t, "alice", users[0].Username)
	assert.False(t, users[0].Active)
	assert.Equal(t, "bob", users[1].Username)
}

func TestUserService_Edit(t *testing.T) {
	db, service := newTestUserService(t)
	user := seedUser(t, db, "bob", models.RoleUser)

	edited, err := service.Edit(context.Background(), user.ID, UserEditInput{
		Role:     models.RoleAdmin,
		Password: "newpassword123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, edited.Role)
	assert.Equal(t, "bob", edited.Username)
	assert.True(t, edited.CheckPassword("newpassword123"))
	assert.False(t, edited.CheckPassword("password123"))

	// User mutations have no capture policy, so nothing is audited.
	assert.Empty(t, auditLogs(t, db))
}

func TestUserService_Edit_InvalidRole(t *testing.T) {
	db, service := newTestUserService(t)
	user := seedUser(t, db, "bob", models.RoleUser)

	_, err := service.Edit(context.Background(), user.ID, UserEditInput{Role: "superadmin"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserService_Edit_NotFound(t *testing.T) {
	_, service := newTestUserService(t)

	_, err := service.Edit(context.Background(), 9999, UserEditInput{Username: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Deactivate(t *testing.T) {
	db, service := newTestUserService(t)
	user := seedUser(t, db, "bob", models.RoleUser)

	deactivated, err := service.Deactivate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)

	// The row survives so audit records keep resolving their actor.
	var persisted models.User
	require.NoError(t, db.First(&persisted, user.ID).Error)
	assert.False(t, persisted.Active)

	_, err = service.Deactivate(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
