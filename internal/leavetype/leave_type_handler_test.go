package leavetype_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leave-portal/internal/domain"
	"leave-portal/internal/leavetype"
	leavetypeerrors "leave-portal/internal/leavetype/errors"
	"leave-portal/internal/leavetype/mock"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type roleGuard struct {
	role domain.Role
}

func (g roleGuard) CurrentSession() (session.Session, bool) {
	return session.Session{Email: "ana@corp.test", Role: g.role}, true
}

func (g roleGuard) Authorize(required domain.Role) session.Decision {
	if g.role.Satisfies(required) {
		return session.Decision{Allowed: true, Reason: session.ReasonAllowed, Required: required, Actual: g.role}
	}
	return session.Decision{Reason: session.ReasonInsufficientRole, Required: required, Actual: g.role}
}

func (g roleGuard) RecordActivity() {}

func setupHandlerTest(t *testing.T, role domain.Role) (*gin.Engine, *mock.MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := mock.NewMockService(gomock.NewController(t))
	perms, err := rbac.NewDefaultService()
	require.NoError(t, err)
	r := gin.New()
	leavetype.RegisterRoutes(r.Group("/"), leavetype.NewHandler(svc), roleGuard{role: role}, perms)
	return r, svc
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_GetAll(t *testing.T) {
	r, svc := setupHandlerTest(t, domain.RoleEmployee)
	types := append(sampleTypes(), leavetype.LeaveType{ID: "5", Name: "Sabbatical"})
	svc.EXPECT().List(gomock.Any()).Return(types, nil)

	w := doJSON(r, http.MethodGet, "/leave-types?active=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []leavetype.LeaveType `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 2)
}

func TestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupHandlerTest(t, domain.RoleAdmin)
		svc.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(leavetype.LeaveType{ID: "9", Name: "Study"}, nil)

		w := doJSON(r, http.MethodPost, "/leave-types", leavetype.CreateLeaveTypeRequest{Name: "Study"})

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("negative manager sees access denied", func(t *testing.T) {
		r, _ := setupHandlerTest(t, domain.RoleManager)

		w := doJSON(r, http.MethodPost, "/leave-types", leavetype.CreateLeaveTypeRequest{Name: "Study"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "sign_out")
		assert.Contains(t, w.Body.String(), "leave-type:write")
	})
}

func TestHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, svc := setupHandlerTest(t, domain.RoleAdmin)
		svc.EXPECT().Delete(gomock.Any(), domain.ID("3")).Return(nil)

		w := doJSON(r, http.MethodDelete, "/leave-types/3", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"data":{"deleted":true}}`, w.Body.String())
	})

	t.Run("negative not found", func(t *testing.T) {
		r, svc := setupHandlerTest(t, domain.RoleAdmin)
		svc.EXPECT().Delete(gomock.Any(), domain.ID("3")).Return(leavetypeerrors.ErrLeaveTypeNotFound)

		w := doJSON(r, http.MethodDelete, "/leave-types/3", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
