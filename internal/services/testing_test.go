package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FeatureFlag{}, &models.AuditLog{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	user := models.User{
		UUID:     uuid.NewString(),
		Username: username,
		Role:     role,
		Active:   true,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func actorContext(user *models.User) context.Context {
	return WithActor(context.Background(), Actor{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

func auditLogs(t *testing.T, db *gorm.DB) []models.AuditLog {
	var logs []models.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	return logs
}
