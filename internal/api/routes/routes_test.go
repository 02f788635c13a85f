package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/config"
	"github.com/togglekeep/togglekeep/internal/models"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	cfg := config.Config{
		Environment:   "development",
		JWTSecret:     "test-secret",
		TokenLifetime: time.Hour,
	}

	router := gin.New()
	require.NoError(t, Register(router, db, cfg))
	return router, db
}

func seedAccount(t *testing.T, db *gorm.DB, username, role string) {
	user := models.User{UUID: uuid.NewString(), Username: username, Role: role, Active: true}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
}

func login(t *testing.T, router *gin.Engine, username string) string {
	body := fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func do(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(router, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "togglekeep_")
}

func TestRoutes_LoginRejectsBadCredentials(t *testing.T) {
	router, db := setupRouter(t)
	seedAccount(t, db, "admin", models.RoleAdmin)

	w := do(router, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPost, "/api/v1/auth/login", "", `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_FlagLifecycleIsAudited(t *testing.T) {
	router, db := setupRouter(t)
	seedAccount(t, db, "admin", models.RoleAdmin)
	token := login(t, router, "admin")

	// Create
	w := do(router, http.MethodPost, "/api/v1/feature-flags", token, `{"key":"feature-test","name":"Test feature","value":true,"tag":"test"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	// Read back without authentication: flag reads are public
	w = do(router, http.MethodGet, "/api/v1/feature-flags/feature-test", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":true`)

	// Toggle off
	w = do(router, http.MethodPut, "/api/v1/feature-flags/toggle/feature-test?value=false", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":false`)

	// Toggle by tag back on
	w = do(router, http.MethodPut, "/api/v1/feature-flags/toggle/tag?tag=test&value=true", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Delete
	w = do(router, http.MethodDelete, "/api/v1/feature-flags/feature-test", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodGet, "/api/v1/feature-flags/feature-test", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Every mutation produced exactly one attributed audit record.
	var logs []models.AuditLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 4)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, models.AuditActionToggle, logs[1].Action)
	assert.Equal(t, models.AuditActionToggleByTag, logs[2].Action)
	assert.Equal(t, models.AuditActionDelete, logs[3].Action)
	for _, record := range logs {
		assert.Equal(t, "admin", record.ActorName)
		assert.NotEmpty(t, record.ActorID)
	}
}

func TestRoutes_AccessControl(t *testing.T) {
	router, db := setupRouter(t)
	seedAccount(t, db, "admin", models.RoleAdmin)
	seedAccount(t, db, "bob", models.RoleUser)
	adminToken := login(t, router, "admin")
	userToken := login(t, router, "bob")

	// Test 1: mutations require authentication
	w := do(router, http.MethodPost, "/api/v1/feature-flags", "", `{"key":"x","name":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test 2: regular users cannot create flags or manage users
	w = do(router, http.MethodPost, "/api/v1/feature-flags", userToken, `{"key":"x","name":"X"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(router, http.MethodGet, "/api/v1/users", userToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(router, http.MethodPost, "/api/v1/auth/register", userToken, `{"username":"eve","password":"password123"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test 3: regular users may toggle
	w = do(router, http.MethodPost, "/api/v1/feature-flags", adminToken, `{"key":"shared","name":"Shared"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(router, http.MethodPut, "/api/v1/feature-flags/toggle/shared?value=true", userToken, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The toggle is attributed to the regular user, not the admin.
	var record models.AuditLog
	require.NoError(t, db.Where("action = ?", models.AuditActionToggle).First(&record).Error)
	assert.Equal(t, "bob", record.ActorName)

	// Test 4: admin registers a new account
	w = do(router, http.MethodPost, "/api/v1/auth/register", adminToken, `{"username":"carol","password":"password123","role":"user"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRoutes_UserAdministration(t *testing.T) {
	router, db := setupRouter(t)
	seedAccount(t, db, "admin", models.RoleAdmin)
	seedAccount(t, db, "bob", models.RoleUser)
	token := login(t, router, "admin")

	var bob models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&bob).Error)

	w := do(router, http.MethodPut, fmt.Sprintf("/api/v1/users/%d", bob.ID), token, `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)

	w = do(router, http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", bob.ID), token, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Deactivated users can no longer log in.
	resp := do(router, http.MethodPost, "/api/v1/auth/login", "", `{"username":"bob","password":"password123"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// User mutations are transactional but unaudited.
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
