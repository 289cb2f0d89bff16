package leave_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"leave-portal/internal/domain"
	"leave-portal/internal/leave"
	leaveerrors "leave-portal/internal/leave/errors"
	"leave-portal/internal/leave/mock"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"
	sessionerrors "leave-portal/internal/session/errors"
	"leave-portal/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var today = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fixedSession struct {
	sess *session.Session
}

func (f fixedSession) CurrentSession() (session.Session, bool) {
	if f.sess == nil {
		return session.Session{}, false
	}
	return *f.sess, true
}

type typeNames map[domain.ID]string

func (m typeNames) Name(_ context.Context, id domain.ID) (string, error) {
	name, ok := m[id]
	if !ok {
		return "", errors.New("unknown leave type")
	}
	return name, nil
}

func setupControllerTest(t *testing.T, role domain.Role, userID string) (*leave.Controller, *mock.MockGateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	gw := mock.NewMockGateway(ctrl)
	perms, err := rbac.NewDefaultService()
	require.NoError(t, err)

	sess := fixedSession{sess: &session.Session{Email: "ana@corp.test", Role: role, UserID: userID}}
	c := leave.NewController(gw, sess, perms,
		leave.WithNow(func() time.Time { return today }),
		leave.WithTypeResolver(typeNames{"3": "Emergency Leave", "1": "Annual"}),
	)
	return c, gw
}

func validRequest() leave.CreateLeaveRequest {
	return leave.CreateLeaveRequest{
		LeaveTypeID: "1",
		StartDate:   "2026-05-10",
		EndDate:     "2026-05-12",
		Reason:      "Family trip",
	}
}

func pending(id, owner string) leave.LeaveApplication {
	return leave.LeaveApplication{
		ID:         domain.ID(id),
		EmployeeID: domain.ID(owner),
		LeaveType:  "Annual",
		StartDate:  "2026-05-10",
		EndDate:    "2026-05-12",
		Status:     leave.StatusPending,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.True(t, apperror.IsValidation(err), "expected validation error, got %v", err)
	appErr, _ := apperror.As(err)
	return appErr.Fields
}

func TestController_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success posts once then refreshes once", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")

		created := pending("41", "7")
		gomock.InOrder(
			gw.EXPECT().
				Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req leave.LeaveRequest) (leave.LeaveApplication, error) {
					assert.Equal(t, domain.ID("7"), req.UserID)
					return created, nil
				}),
			gw.EXPECT().
				List(gomock.Any(), leave.AllScope()).
				Return([]leave.LeaveApplication{created}, nil),
		)

		res, err := c.Create(ctx, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, created, res)
		cached, loaded := c.Leaves()
		assert.True(t, loaded)
		assert.Len(t, cached, 1)
		assert.Empty(t, c.LastError())
	})

	t.Run("negative end before start never reaches the network", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleEmployee, "7")

		req := validRequest()
		req.StartDate, req.EndDate = "2026-05-12", "2026-05-10"

		_, err := c.Create(ctx, req)

		assert.Equal(t, "End date cannot be before start date", fieldErrors(t, err)["endDate"])
	})

	t.Run("negative start in the past", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleEmployee, "7")

		req := validRequest()
		req.StartDate = "2026-05-03"

		_, err := c.Create(ctx, req)

		assert.Equal(t, "Start date cannot be in the past", fieldErrors(t, err)["startDate"])
	})

	t.Run("negative missing required fields", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleEmployee, "7")

		_, err := c.Create(ctx, leave.CreateLeaveRequest{Reason: "   "})

		fields := fieldErrors(t, err)
		assert.Contains(t, fields, "startDate")
		assert.Contains(t, fields, "endDate")
		assert.Contains(t, fields, "reason")
	})

	t.Run("negative emergency type needs a contact", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleEmployee, "7")

		req := validRequest()
		req.LeaveTypeID = "3"

		_, err := c.Create(ctx, req)

		assert.Equal(t, "Emergency contact is required", fieldErrors(t, err)["emergencyContact"])
	})

	t.Run("negative server message kept verbatim and cache untouched", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")

		serverErr := apperror.New(apperror.CodeServerError, "Leave balance exceeded", http.StatusBadRequest)
		gw.EXPECT().Create(gomock.Any(), gomock.Any()).Return(leave.LeaveApplication{}, serverErr)

		_, err := c.Create(ctx, validRequest())

		assert.ErrorIs(t, err, serverErr)
		assert.Equal(t, "Leave balance exceeded", c.LastError())
		_, loaded := c.Leaves()
		assert.False(t, loaded)
	})

	t.Run("negative signed out", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		perms, _ := rbac.NewDefaultService()
		c := leave.NewController(mock.NewMockGateway(ctrl), fixedSession{}, perms)

		_, err := c.Create(ctx, validRequest())

		assert.ErrorIs(t, err, sessionerrors.ErrNotAuthenticated)
	})
}

func TestController_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("negative five character reason", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleManager, "2")

		err := c.Reject(ctx, "41", "nope!")

		assert.Contains(t, fieldErrors(t, err), "reason")
	})

	t.Run("success ten characters means one reject then one refresh", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")

		gomock.InOrder(
			gw.EXPECT().Reject(gomock.Any(), domain.ID("41"), "0123456789").Return(nil).Times(1),
			gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{}, nil).Times(1),
		)

		assert.NoError(t, c.Reject(ctx, "41", "  0123456789  "))
	})

	t.Run("negative employee cannot reject", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleEmployee, "7")

		err := c.Reject(ctx, "41", "not enough cover this week")

		assert.ErrorIs(t, err, leaveerrors.ErrNotAllowed)
	})
}

func TestController_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("negative already approved in cache", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")

		done := pending("41", "7")
		done.Status = leave.StatusApproved
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{done}, nil)
		_, err := c.List(ctx)
		require.NoError(t, err)

		err = c.Approve(ctx, "41")

		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})

	t.Run("negative server rejects a decided leave verbatim", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleAdmin, "1")

		serverErr := apperror.New(apperror.CodeInvalidState, "Leave already rejected", http.StatusConflict)
		gw.EXPECT().Approve(gomock.Any(), domain.ID("99")).Return(serverErr)

		err := c.Approve(ctx, "99")

		assert.ErrorIs(t, err, serverErr)
		assert.Equal(t, "Leave already rejected", c.LastError())
	})

	t.Run("abandoned view skips the refresh", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")
		vctx, cancel := context.WithCancel(ctx)

		gw.EXPECT().
			Approve(gomock.Any(), domain.ID("41")).
			DoAndReturn(func(context.Context, domain.ID) error {
				cancel()
				return nil
			})

		err := c.Approve(vctx, "41")

		assert.ErrorIs(t, err, leaveerrors.ErrAbandoned)
	})

	t.Run("view closed while the call is in flight", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")
		vctx, cancel := context.WithCancel(ctx)

		gw.EXPECT().
			Reject(gomock.Any(), domain.ID("41"), "Not enough cover").
			DoAndReturn(func(context.Context, domain.ID, string) error {
				cancel()
				return apperror.Wrap(context.Canceled, apperror.CodeServiceUnavailable, "Failed to reject leave", http.StatusServiceUnavailable)
			})

		err := c.Reject(vctx, "41", "Not enough cover")

		assert.ErrorIs(t, err, leaveerrors.ErrAbandoned)
		assert.Empty(t, c.LastError())
	})

	t.Run("refresh failure after success is reported inline", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")

		gomock.InOrder(
			gw.EXPECT().Approve(gomock.Any(), domain.ID("41")).Return(nil),
			gw.EXPECT().List(gomock.Any(), leave.AllScope()).
				Return(nil, apperror.New(apperror.CodeServiceUnavailable, "Failed to fetch leaves", http.StatusServiceUnavailable)),
		)

		err := c.Approve(ctx, "41")

		assert.NoError(t, err)
		assert.Equal(t, "Failed to fetch leaves", c.LastError())
	})
}

func TestController_Update(t *testing.T) {
	ctx := context.Background()

	load := func(t *testing.T, c *leave.Controller, gw *mock.MockGateway, items ...leave.LeaveApplication) {
		t.Helper()
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return(items, nil)
		_, err := c.List(ctx)
		require.NoError(t, err)
	}

	t.Run("success owner edits own pending leave", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")
		load(t, c, gw, pending("41", "7"))

		gomock.InOrder(
			gw.EXPECT().Update(gomock.Any(), domain.ID("41"), gomock.Any()).Return(pending("41", "7"), nil),
			gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{pending("41", "7")}, nil),
		)

		_, err := c.Update(ctx, "41", validRequest())

		assert.NoError(t, err)
	})

	t.Run("negative someone else's leave", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")
		load(t, c, gw, pending("41", "8"))

		_, err := c.Update(ctx, "41", validRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrNotEditable)
	})

	t.Run("negative own leave already decided", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")
		decided := pending("41", "7")
		decided.Status = leave.StatusRejected
		load(t, c, gw, decided)

		_, err := c.Update(ctx, "41", validRequest())

		assert.ErrorIs(t, err, leaveerrors.ErrNotEditable)
	})

	t.Run("success admin edits anything", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleAdmin, "1")
		decided := pending("41", "7")
		decided.Status = leave.StatusApproved
		load(t, c, gw, decided)

		gw.EXPECT().Update(gomock.Any(), domain.ID("41"), gomock.Any()).Return(decided, nil)
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{decided}, nil)

		_, err := c.Update(ctx, "41", validRequest())

		assert.NoError(t, err)
	})
}

func TestController_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("success admin", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleAdmin, "1")

		gomock.InOrder(
			gw.EXPECT().Delete(gomock.Any(), domain.ID("41")).Return(nil),
			gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{}, nil),
		)

		assert.NoError(t, c.Remove(ctx, "41"))
	})

	t.Run("negative manager", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleManager, "2")

		assert.ErrorIs(t, c.Remove(ctx, "41"), leaveerrors.ErrNotAllowed)
	})

	t.Run("negative empty id", func(t *testing.T) {
		c, _ := setupControllerTest(t, domain.RoleAdmin, "1")

		assert.ErrorIs(t, c.Remove(ctx, ""), leaveerrors.ErrInvalidLeaveID)
	})
}

func TestController_List(t *testing.T) {
	ctx := context.Background()

	t.Run("overlapping refreshes keep the last issued", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")

		older := []leave.LeaveApplication{pending("1", "7")}
		newer := []leave.LeaveApplication{pending("1", "7"), pending("2", "8")}

		firstStarted := make(chan struct{})
		releaseFirst := make(chan struct{})
		var calls int
		var mu sync.Mutex

		gw.EXPECT().
			List(gomock.Any(), leave.AllScope()).
			DoAndReturn(func(ctx context.Context, _ leave.Scope) ([]leave.LeaveApplication, error) {
				mu.Lock()
				calls++
				n := calls
				mu.Unlock()
				if n == 1 {
					close(firstStarted)
					<-releaseFirst
					return older, nil
				}
				return newer, nil
			}).
			Times(2)

		var firstErr error
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, firstErr = c.List(ctx)
		}()

		<-firstStarted
		got, err := c.List(ctx)
		close(releaseFirst)
		wg.Wait()

		assert.NoError(t, err)
		assert.Equal(t, newer, got)
		assert.ErrorIs(t, firstErr, leaveerrors.ErrRefreshSuperseded)
		cached, _ := c.Leaves()
		assert.Equal(t, newer, cached)
	})

	t.Run("scope sticks for later refreshes", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleManager, "2")

		gomock.InOrder(
			gw.EXPECT().List(gomock.Any(), leave.ManagerScope("2")).Return([]leave.LeaveApplication{}, nil),
			gw.EXPECT().Approve(gomock.Any(), domain.ID("5")).Return(nil),
			gw.EXPECT().List(gomock.Any(), leave.ManagerScope("2")).Return([]leave.LeaveApplication{}, nil),
		)

		_, err := c.ListScope(ctx, leave.ManagerScope("2"))
		require.NoError(t, err)
		assert.NoError(t, c.Approve(ctx, "5"))
		assert.Equal(t, leave.ManagerScope("2"), c.Scope())
	})

	t.Run("negative fetch failure keeps the old list", func(t *testing.T) {
		c, gw := setupControllerTest(t, domain.RoleEmployee, "7")

		gw.EXPECT().List(gomock.Any(), leave.AllScope()).Return([]leave.LeaveApplication{pending("1", "7")}, nil)
		gw.EXPECT().List(gomock.Any(), leave.AllScope()).
			Return(nil, apperror.New(apperror.CodeServerError, "Failed to fetch leaves", http.StatusBadGateway))

		_, err := c.List(ctx)
		require.NoError(t, err)
		_, err = c.List(ctx)

		assert.Error(t, err)
		cached, _ := c.Leaves()
		assert.Len(t, cached, 1)
		assert.Equal(t, "Failed to fetch leaves", c.LastError())
	})
}
