package rbac_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leave-portal/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRBACRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := rbac.NewDefaultService()
	require.NoError(t, err)

	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		c.Set("role", role)
		c.Next()
	})
	rbac.RegisterRoutes(group, rbac.NewHandler(svc))
	return r
}

func postJSON(r http.Handler, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Enforce(t *testing.T) {
	t.Run("success manager may approve", func(t *testing.T) {
		r := setupRBACRouter(t, "MANAGER")

		w := postJSON(r, "/rbac/enforce", gin.H{"resource": "leave", "action": "approve"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"allowed":true`)
	})

	t.Run("success employee may not delete", func(t *testing.T) {
		r := setupRBACRouter(t, "EMPLOYEE")

		w := postJSON(r, "/rbac/enforce", gin.H{"resource": "leave", "action": "delete"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"allowed":false`)
	})

	t.Run("negative blank fields", func(t *testing.T) {
		r := setupRBACRouter(t, "MANAGER")

		w := postJSON(r, "/rbac/enforce", gin.H{"resource": "  ", "action": ""})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env struct {
			Error struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
		assert.Equal(t, "Resource is required", env.Error.Details["resource"])
		assert.Equal(t, "Action is required", env.Error.Details["action"])
	})
}
