package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"leave-portal/internal/app"
	"leave-portal/internal/config"
	"leave-portal/internal/session"
	"leave-portal/internal/session/sessiontest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type backend struct {
	listCalls    atomic.Int32
	approveCalls atomic.Int32
	revoked      atomic.Bool
}

func (b *backend) routes(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")

	api.POST("/users/login", func(c *gin.Context) {
		token := sessiontest.Token(t, "mia@corp.test", "MANAGER", time.Now(), time.Hour)
		c.JSON(http.StatusOK, gin.H{"token": token, "role": "MANAGER", "email": "mia@corp.test", "id": 2})
	})

	authed := api.Group("", func(c *gin.Context) {
		if b.revoked.Load() || c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	})
	authed.GET("/leave-applications/manager/:id", func(c *gin.Context) {
		b.listCalls.Add(1)
		status := "PENDING"
		if b.approveCalls.Load() > 0 {
			status = "APPROVED"
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "data": []gin.H{{
			"id": 41, "employeeId": 7, "employeeName": "Ana Lim", "leaveType": "Annual",
			"startDate": "2030-01-10", "endDate": "2030-01-12", "reason": "Trip", "status": status,
		}}})
	})
	authed.PUT("/leave-applications/:id/approve", func(c *gin.Context) {
		b.approveCalls.Add(1)
		c.JSON(http.StatusOK, gin.H{"message": "approved"})
	})
	return r
}

func setupPortal(t *testing.T) (*gin.Engine, *backend, *app.App) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.routes(t))
	t.Cleanup(srv.Close)

	cfg := config.Config{
		APIBaseURL:      srv.URL + "/api",
		HTTPTimeout:     5 * time.Second,
		PortalRateLimit: 100,
		PortalRateBurst: 100,
		IdleTimeout:     30 * time.Minute,
		WarningWindow:   30 * time.Second,
		SessionStore:    config.StoreMemory,
	}
	a, err := app.BuildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	return app.NewRouter(a), b, a
}

func send(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPortal_ApproveFlow(t *testing.T) {
	router, b, a := setupPortal(t)

	w := send(router, http.MethodGet, "/api/leaves", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)

	w = send(router, http.MethodPost, "/api/auth/login", gin.H{"email": "mia@corp.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = send(router, http.MethodGet, "/api/leaves?scope=team", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"PENDING"`)

	w = send(router, http.MethodPut, "/api/leaves/41/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int32(1), b.approveCalls.Load())
	assert.Equal(t, int32(2), b.listCalls.Load())

	w = send(router, http.MethodPut, "/api/leaves/41/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, int32(1), b.approveCalls.Load())

	w = send(router, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"AUTHENTICATED"`)

	w = send(router, http.MethodGet, "/api/rbac/permissions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "approve")

	_, ok := a.Guard.CurrentSession()
	assert.True(t, ok)
}

func TestPortal_ServerRevokesToken(t *testing.T) {
	router, b, a := setupPortal(t)

	w := send(router, http.MethodPost, "/api/auth/login", gin.H{"email": "mia@corp.test", "password": "hunter22"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	b.revoked.Store(true)
	w = send(router, http.MethodGet, "/api/leaves?scope=team", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, session.StateUnauthenticated, a.Guard.Status().State)
	w = send(router, http.MethodGet, "/api/leaves", nil)
	assert.Contains(t, w.Body.String(), `"redirect":"/login"`)
}

func TestPortal_Healthz(t *testing.T) {
	router, _, _ := setupPortal(t)

	w := send(router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHENTICATED")
	assert.Equal(t, http.StatusOK, send(router, http.MethodGet, "/metrics", nil).Code)
}
