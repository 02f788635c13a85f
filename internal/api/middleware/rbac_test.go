package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/togglekeep/togglekeep/internal/services"
)

func rbacRouter(operation string, actor *services.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if actor != nil {
		router.Use(func(c *gin.Context) {
			c.Set(ActorKey, *actor)
			c.Next()
		})
	}
	router.GET("/probe", RequireOperation(operation), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func probe(router *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRequireOperation(t *testing.T) {
	admin := &services.Actor{UserID: 1, Username: "alice", Role: "admin"}
	user := &services.Actor{UserID: 2, Username: "bob", Role: "user"}

	// Test 1: public operations pass without any actor
	assert.Equal(t, http.StatusOK, probe(rbacRouter(services.OpFlagRead, nil)))
	assert.Equal(t, http.StatusOK, probe(rbacRouter(services.OpLogin, nil)))

	// Test 2: protected operations without an actor get 401
	assert.Equal(t, http.StatusUnauthorized, probe(rbacRouter(services.OpFlagCreate, nil)))

	// Test 3: wrong role gets 403
	assert.Equal(t, http.StatusForbidden, probe(rbacRouter(services.OpFlagCreate, user)))
	assert.Equal(t, http.StatusForbidden, probe(rbacRouter(services.OpUserList, user)))

	// Test 4: permitted roles pass
	assert.Equal(t, http.StatusOK, probe(rbacRouter(services.OpFlagCreate, admin)))
	assert.Equal(t, http.StatusOK, probe(rbacRouter(services.OpFlagToggle, user)))
	assert.Equal(t, http.StatusOK, probe(rbacRouter(services.OpFlagToggle, admin)))
}
