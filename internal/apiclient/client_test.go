package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leave-portal/internal/apiclient"
	"leave-portal/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func setupServer(t *testing.T, register func(r *gin.Engine)) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestClient_Decode(t *testing.T) {
	ctx := context.Background()
	url := setupServer(t, func(r *gin.Engine) {
		r.GET("/bare", func(c *gin.Context) {
			c.JSON(http.StatusOK, item{ID: "1", Name: "Annual"})
		})
		r.GET("/wrapped", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "data": item{ID: "2", Name: "Sick"}})
		})
		r.PUT("/empty", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
	})
	client := apiclient.New(url, 5*time.Second)

	t.Run("success bare body", func(t *testing.T) {
		var out item
		require.NoError(t, client.Get(ctx, "/bare", &out, "failed"))
		assert.Equal(t, item{ID: "1", Name: "Annual"}, out)
	})

	t.Run("success envelope", func(t *testing.T) {
		var out item
		require.NoError(t, client.Get(ctx, "/wrapped", &out, "failed"))
		assert.Equal(t, "Sick", out.Name)
	})

	t.Run("success no content", func(t *testing.T) {
		assert.NoError(t, client.Put(ctx, "/empty", struct{}{}, nil, "failed"))
	})
}

func TestClient_Headers(t *testing.T) {
	var gotAuth, gotRID string
	url := setupServer(t, func(r *gin.Engine) {
		r.GET("/me", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			gotRID = c.GetHeader("X-Request-ID")
			c.JSON(http.StatusOK, gin.H{})
		})
	})

	client := apiclient.New(url, 5*time.Second, apiclient.WithTokenSource(
		apiclient.TokenSourceFunc(func(context.Context) (string, error) { return "abc", nil }),
	))

	require.NoError(t, client.Get(context.Background(), "/me", &map[string]any{}, "failed"))
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.NotEmpty(t, gotRID)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	url := setupServer(t, func(r *gin.Engine) {
		r.GET("/expired", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })
		r.GET("/forbidden", func(c *gin.Context) { c.Status(http.StatusForbidden) })
		r.PUT("/state", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{"code": "INVALID_STATE", "message": "Leave is no longer pending"}})
		})
		r.POST("/plain", func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Overlapping leave exists"})
		})
		r.DELETE("/boom", func(c *gin.Context) { c.String(http.StatusInternalServerError, "<html>") })
	})

	t.Run("negative 401 runs the hook", func(t *testing.T) {
		var hooked int
		client := apiclient.New(url, 5*time.Second, apiclient.WithUnauthorizedHandler(func(context.Context) { hooked++ }))

		err := client.Get(ctx, "/expired", nil, "failed")

		assert.True(t, apperror.IsAuth(err))
		appErr, _ := apperror.As(err)
		assert.Equal(t, apiclient.SessionExpiredMessage, appErr.Message)
		assert.Equal(t, 1, hooked)
	})

	client := apiclient.New(url, 5*time.Second)

	t.Run("negative 403", func(t *testing.T) {
		err := client.Get(ctx, "/forbidden", nil, "failed")

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	})

	t.Run("negative server code and message kept", func(t *testing.T) {
		err := client.Put(ctx, "/state", struct{}{}, nil, "Failed to approve leave")

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
		assert.Equal(t, "Leave is no longer pending", appErr.Message)
	})

	t.Run("negative string error field", func(t *testing.T) {
		err := client.Post(ctx, "/plain", struct{}{}, nil, "Failed to create leave")

		appErr, _ := apperror.As(err)
		assert.Equal(t, "Overlapping leave exists", appErr.Message)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	})

	t.Run("negative fallback message", func(t *testing.T) {
		err := client.Delete(ctx, "/boom", nil, "Failed to delete leave")

		appErr, _ := apperror.As(err)
		assert.Equal(t, apperror.CodeServerError, appErr.Code)
		assert.Equal(t, "Failed to delete leave", appErr.Message)
	})

	t.Run("negative network failure", func(t *testing.T) {
		dead := apiclient.New("http://127.0.0.1:1", time.Second)

		err := dead.Get(ctx, "/x", nil, "Failed to fetch leaves")

		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeServiceUnavailable, appErr.Code)
		assert.Equal(t, "Failed to fetch leaves", appErr.Message)
	})
}
