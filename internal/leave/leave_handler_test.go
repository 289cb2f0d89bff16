package leave_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leave-portal/internal/domain"
	"leave-portal/internal/leave"
	"leave-portal/internal/leave/mock"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type portalGuard struct {
	sess session.Session
}

func (g portalGuard) CurrentSession() (session.Session, bool) { return g.sess, true }

func (g portalGuard) Authorize(required domain.Role) session.Decision {
	if g.sess.Role.Satisfies(required) {
		return session.Decision{Allowed: true, Reason: session.ReasonAllowed, Required: required, Actual: g.sess.Role}
	}
	return session.Decision{Reason: session.ReasonInsufficientRole, Required: required, Actual: g.sess.Role}
}

func (g portalGuard) RecordActivity() {}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func setupLeaveRouter(t *testing.T, role domain.Role, userID string) (*gin.Engine, *mock.MockGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	gw := mock.NewMockGateway(ctrl)
	perms, err := rbac.NewDefaultService()
	require.NoError(t, err)

	sess := session.Session{Email: "ana@corp.test", Role: role, UserID: userID}
	c := leave.NewController(gw, fixedSession{sess: &sess}, perms,
		leave.WithNow(func() time.Time { return today }),
	)

	r := gin.New()
	leave.RegisterRoutes(r.Group("/"), leave.NewHandler(c), portalGuard{sess: sess})
	return r, gw
}

func call(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandler_GetAll(t *testing.T) {
	t.Run("success filters and paginates", func(t *testing.T) {
		r, gw := setupLeaveRouter(t, domain.RoleManager, "2")
		gw.EXPECT().List(gomock.Any(), leave.ManagerScope("2")).Return(sampleLeaves(), nil)

		w, env := call(r, http.MethodGet, "/leaves?scope=team&type=annual&sort=startDate&order=asc&page_size=1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var items []leave.LeaveApplication
		require.NoError(t, json.Unmarshal(env.Data, &items))
		assert.Equal(t, []string{"3"}, ids(items))
		assert.Equal(t, float64(2), env.Meta["total"])
		assert.Equal(t, float64(2), env.Meta["totalPages"])
	})

	t.Run("negative bad status filter", func(t *testing.T) {
		r, gw := setupLeaveRouter(t, domain.RoleEmployee, "7")
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return(sampleLeaves(), nil)

		w, env := call(r, http.MethodGet, "/leaves?status=maybe", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("negative unknown scope never fetches", func(t *testing.T) {
		r, _ := setupLeaveRouter(t, domain.RoleEmployee, "7")

		w, _ := call(r, http.MethodGet, "/leaves?scope=company", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Summary(t *testing.T) {
	r, gw := setupLeaveRouter(t, domain.RoleEmployee, "7")
	gw.EXPECT().List(gomock.Any(), leave.UserScope("7")).Return(sampleLeaves(), nil)

	w, env := call(r, http.MethodGet, "/leaves/summary?scope=mine", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var s leave.Summary
	require.NoError(t, json.Unmarshal(env.Data, &s))
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ApprovedToday)
}

func TestHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, gw := setupLeaveRouter(t, domain.RoleEmployee, "7")
		gw.EXPECT().Create(gomock.Any(), gomock.Any()).Return(pending("41", "7"), nil)
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{pending("41", "7")}, nil)

		w, env := call(r, http.MethodPost, "/leaves", validRequest())

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)
	})

	t.Run("negative validation returns field details", func(t *testing.T) {
		r, _ := setupLeaveRouter(t, domain.RoleEmployee, "7")

		req := validRequest()
		req.EndDate = "2026-05-01"
		w, env := call(r, http.MethodPost, "/leaves", req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "End date cannot be before start date", env.Error.Details["endDate"])
	})
}

func TestHandler_Decisions(t *testing.T) {
	t.Run("negative employee gets access denied on approve", func(t *testing.T) {
		r, _ := setupLeaveRouter(t, domain.RoleEmployee, "7")

		w, env := call(r, http.MethodPut, "/leaves/41/approve", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "MANAGER", env.Error.Details["required"])
	})

	t.Run("success reject", func(t *testing.T) {
		r, gw := setupLeaveRouter(t, domain.RoleManager, "2")
		gw.EXPECT().Reject(gomock.Any(), domain.ID("41"), "Not enough cover").Return(nil)
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{}, nil)

		w, env := call(r, http.MethodPut, "/leaves/41/reject", leave.RejectLeaveRequest{Reason: "Not enough cover"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"41","status":"REJECTED","refreshError":""}`, string(env.Data))
	})

	t.Run("negative short reject reason", func(t *testing.T) {
		r, _ := setupLeaveRouter(t, domain.RoleManager, "2")

		w, env := call(r, http.MethodPut, "/leaves/41/reject", leave.RejectLeaveRequest{Reason: "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Error.Details, "reason")
	})

	t.Run("negative manager cannot delete", func(t *testing.T) {
		r, _ := setupLeaveRouter(t, domain.RoleManager, "2")

		w, _ := call(r, http.MethodDelete, "/leaves/41", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
