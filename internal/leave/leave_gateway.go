package leave

import (
	"context"
	"net/url"

	"leave-portal/internal/domain"
	leaveerrors "leave-portal/internal/leave/errors"
)

// API is the slice of the REST client the leave calls need.
type API interface {
	Get(ctx context.Context, path string, out any, fallback string) error
	Post(ctx context.Context, path string, body, out any, fallback string) error
	Put(ctx context.Context, path string, body, out any, fallback string) error
	Delete(ctx context.Context, path string, out any, fallback string) error
}

//go:generate mockgen -source=leave_gateway.go -destination=mock/leave_gateway_mock.go -package=mock
type Gateway interface {
	List(ctx context.Context, scope Scope) ([]LeaveApplication, error)
	Get(ctx context.Context, id domain.ID) (LeaveApplication, error)
	Create(ctx context.Context, req LeaveRequest) (LeaveApplication, error)
	Update(ctx context.Context, id domain.ID, req LeaveRequest) (LeaveApplication, error)
	Delete(ctx context.Context, id domain.ID) error
	Approve(ctx context.Context, id domain.ID) error
	Reject(ctx context.Context, id domain.ID, reason string) error
}

const basePath = "/leave-applications"

type restGateway struct {
	api API
}

func NewGateway(api API) Gateway {
	return &restGateway{api: api}
}

func leavePath(id domain.ID, suffix ...string) string {
	p := basePath + "/" + url.PathEscape(id.String())
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func (g *restGateway) List(ctx context.Context, scope Scope) ([]LeaveApplication, error) {
	path := basePath
	switch scope.Kind {
	case ScopeUser:
		path += "/user/" + url.PathEscape(scope.ID)
	case ScopeManager:
		path += "/manager/" + url.PathEscape(scope.ID)
	}

	var out []LeaveApplication
	if err := g.api.Get(ctx, path, &out, leaveerrors.MsgFetchFailed); err != nil {
		return nil, err
	}
	if out == nil {
		out = []LeaveApplication{}
	}
	return out, nil
}

func (g *restGateway) Get(ctx context.Context, id domain.ID) (LeaveApplication, error) {
	var out LeaveApplication
	err := g.api.Get(ctx, leavePath(id), &out, leaveerrors.MsgGetFailed)
	return out, err
}

func (g *restGateway) Create(ctx context.Context, req LeaveRequest) (LeaveApplication, error) {
	var out LeaveApplication
	err := g.api.Post(ctx, basePath, req, &out, leaveerrors.MsgCreateFailed)
	return out, err
}

func (g *restGateway) Update(ctx context.Context, id domain.ID, req LeaveRequest) (LeaveApplication, error) {
	var out LeaveApplication
	err := g.api.Put(ctx, leavePath(id), req, &out, leaveerrors.MsgUpdateFailed)
	return out, err
}

func (g *restGateway) Delete(ctx context.Context, id domain.ID) error {
	return g.api.Delete(ctx, leavePath(id), nil, leaveerrors.MsgDeleteFailed)
}

func (g *restGateway) Approve(ctx context.Context, id domain.ID) error {
	return g.api.Put(ctx, leavePath(id, "approve"), struct{}{}, nil, leaveerrors.MsgApproveFailed)
}

func (g *restGateway) Reject(ctx context.Context, id domain.ID, reason string) error {
	return g.api.Put(ctx, leavePath(id, "reject"), RejectLeaveRequest{Reason: reason}, nil, leaveerrors.MsgRejectFailed)
}
