package leavetype

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"leave-portal/internal/domain"
	leavetypeerrors "leave-portal/internal/leavetype/errors"
	"leave-portal/internal/metrics"
	"leave-portal/internal/rbac"
	"leave-portal/internal/session"
	sessionerrors "leave-portal/internal/session/errors"
	"leave-portal/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	CacheKey = "leave-portal:leave-types"
	CacheTTL = 30 * time.Minute
)

type SessionReader interface {
	CurrentSession() (session.Session, bool)
}

type PermissionChecker interface {
	Permits(role domain.Role, resource, action string) bool
}

//go:generate mockgen -source=leave_type_service.go -destination=mock/leave_type_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context) ([]LeaveType, error)
	Get(ctx context.Context, id domain.ID) (LeaveType, error)
	Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveType, error)
	Update(ctx context.Context, id domain.ID, req UpdateLeaveTypeRequest) (LeaveType, error)
	Delete(ctx context.Context, id domain.ID) error
	Name(ctx context.Context, id domain.ID) (string, error)
}

// service keeps the leave type list in process and, when rdb is set, in
// redis so that portals on one host share it. Any mutation drops both.
type service struct {
	gateway  Gateway
	sessions SessionReader
	perms    PermissionChecker
	rdb      redis.Cmdable
	sf       *singleflight.Group
	logger   *zap.Logger

	mu     sync.RWMutex
	cached []LeaveType
	loaded bool
}

func NewService(
	gateway Gateway,
	sessions SessionReader,
	perms PermissionChecker,
	rdb redis.Cmdable,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{
		gateway:  gateway,
		sessions: sessions,
		perms:    perms,
		rdb:      rdb,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) List(ctx context.Context) ([]LeaveType, error) {
	if _, err := s.requireRole(rbac.ActionRead); err != nil {
		return nil, err
	}

	if types, ok := s.fromMemory(); ok {
		return types, nil
	}

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, CacheKey).Result()
		if err == nil {
			var types []LeaveType
			if err := json.Unmarshal([]byte(cached), &types); err == nil {
				s.remember(types)
				return clone(types), nil
			}
		}
	}

	v, err, _ := s.sf.Do(CacheKey, func() (interface{}, error) {
		types, err := s.gateway.List(ctx)
		if err != nil {
			return nil, err
		}
		s.remember(types)

		if s.rdb != nil {
			if data, err := json.Marshal(types); err == nil {
				if err := s.rdb.Set(ctx, CacheKey, data, CacheTTL).Err(); err != nil {
					contextutil.GetLogger(ctx, s.logger).Warn("cache leave types failed", zap.Error(err))
				}
			}
		}
		return types, nil
	})
	if err != nil {
		return nil, err
	}

	return clone(v.([]LeaveType)), nil
}

func (s *service) Get(ctx context.Context, id domain.ID) (LeaveType, error) {
	if _, err := s.requireRole(rbac.ActionRead); err != nil {
		return LeaveType{}, err
	}
	if id.IsZero() {
		return LeaveType{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	return s.gateway.Get(ctx, id)
}

// Name resolves a leave type id through the cached list.
func (s *service) Name(ctx context.Context, id domain.ID) (string, error) {
	types, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range types {
		if t.ID == id {
			return t.Name, nil
		}
	}
	return "", leavetypeerrors.ErrLeaveTypeNotFound
}

func (s *service) Create(ctx context.Context, req CreateLeaveTypeRequest) (LeaveType, error) {
	const op = "leave_type.create"
	if _, err := s.requireRole(rbac.ActionWrite); err != nil {
		metrics.Mutation(op, "rejected")
		return LeaveType{}, err
	}
	if err := req.Validate(); err != nil {
		metrics.Mutation(op, "rejected")
		return LeaveType{}, err
	}

	created, err := s.gateway.Create(ctx, req.withDefaults())
	if err != nil {
		metrics.Mutation(op, "failed")
		return LeaveType{}, err
	}

	metrics.Mutation(op, "ok")
	s.invalidate(ctx)
	return created, nil
}

func (s *service) Update(ctx context.Context, id domain.ID, req UpdateLeaveTypeRequest) (LeaveType, error) {
	const op = "leave_type.update"
	if _, err := s.requireRole(rbac.ActionWrite); err != nil {
		metrics.Mutation(op, "rejected")
		return LeaveType{}, err
	}
	if id.IsZero() {
		metrics.Mutation(op, "rejected")
		return LeaveType{}, leavetypeerrors.ErrInvalidLeaveTypeID
	}
	if err := req.Validate(); err != nil {
		metrics.Mutation(op, "rejected")
		return LeaveType{}, err
	}

	updated, err := s.gateway.Update(ctx, id, req)
	if err != nil {
		metrics.Mutation(op, "failed")
		return LeaveType{}, err
	}

	metrics.Mutation(op, "ok")
	s.invalidate(ctx)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id domain.ID) error {
	const op = "leave_type.delete"
	if _, err := s.requireRole(rbac.ActionWrite); err != nil {
		metrics.Mutation(op, "rejected")
		return err
	}
	if id.IsZero() {
		metrics.Mutation(op, "rejected")
		return leavetypeerrors.ErrInvalidLeaveTypeID
	}

	if err := s.gateway.Delete(ctx, id); err != nil {
		metrics.Mutation(op, "failed")
		return err
	}

	metrics.Mutation(op, "ok")
	s.invalidate(ctx)
	return nil
}

func (s *service) requireRole(action string) (session.Session, error) {
	sess, ok := s.sessions.CurrentSession()
	if !ok {
		return session.Session{}, sessionerrors.ErrNotAuthenticated
	}
	if !s.perms.Permits(sess.Role, rbac.ResourceLeaveType, action) {
		return session.Session{}, leavetypeerrors.ErrAdminOnly
	}
	return sess, nil
}

func (s *service) fromMemory() ([]LeaveType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, false
	}
	return clone(s.cached), true
}

func (s *service) remember(types []LeaveType) {
	s.mu.Lock()
	s.cached = clone(types)
	s.loaded = true
	s.mu.Unlock()
}

func (s *service) invalidate(ctx context.Context) {
	s.mu.Lock()
	s.cached = nil
	s.loaded = false
	s.mu.Unlock()

	s.sf.Forget(CacheKey)
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, CacheKey).Err(); err != nil {
			contextutil.GetLogger(ctx, s.logger).Error("invalidate leave type cache failed",
				zap.String("key", CacheKey),
				zap.Error(err),
			)
		}
	}
}

func clone(types []LeaveType) []LeaveType {
	out := make([]LeaveType, len(types))
	copy(out, types)
	return out
}
