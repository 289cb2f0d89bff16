package rbac

import (
	"sort"
	"sync"

	"leave-portal/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
	// Permits is Enforce for callers that treat an error as a denial.
	Permits(role domain.Role, resource, action string) bool
	Permissions(role domain.Role) ([]Permission, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

// NewDefaultService wires a Service around the built-in policy table.
func NewDefaultService(logger ...*zap.Logger) (Service, error) {
	e, err := NewEnforcer()
	if err != nil {
		return nil, err
	}
	return NewService(e, logger...), nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		s.logger.Debug("rbac enforce unknown role", zap.String("role", req.Role))
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allowed, err := s.enforcer.Enforce(role.String(), req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role.String()),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role.String()),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permits(role domain.Role, resource, action string) bool {
	allowed, err := s.Enforce(EnforceRequest{Role: role.String(), Resource: resource, Action: action})
	return err == nil && allowed
}

func (s *service) Permissions(role domain.Role) ([]Permission, error) {
	if !role.Valid() {
		return nil, nil
	}

	s.mu.Lock()
	rows, err := s.enforcer.GetImplicitPermissionsForUser(role.String())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	perms := make([]Permission, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		perms = append(perms, Permission{Resource: row[1], Action: row[2]})
	}
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Resource != perms[j].Resource {
			return perms[i].Resource < perms[j].Resource
		}
		return perms[i].Action < perms[j].Action
	})
	return perms, nil
}
