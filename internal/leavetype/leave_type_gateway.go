package leavetype

import (
	"context"
	"net/url"

	"leave-portal/internal/domain"
	leavetypeerrors "leave-portal/internal/leavetype/errors"
)

type API interface {
	Get(ctx context.Context, path string, out any, fallback string) error
	Post(ctx context.Context, path string, body, out any, fallback string) error
	Put(ctx context.Context, path string, body, out any, fallback string) error
	Delete(ctx context.Context, path string, out any, fallback string) error
}

//go:generate mockgen -source=leave_type_gateway.go -destination=mock/leave_type_gateway_mock.go -package=mock
type Gateway interface {
	List(ctx context.Context) ([]LeaveType, error)
	Get(ctx context.Context, id domain.ID) (LeaveType, error)
	Create(ctx context.Context, req LeaveTypeRequest) (LeaveType, error)
	Update(ctx context.Context, id domain.ID, req LeaveTypeRequest) (LeaveType, error)
	Delete(ctx context.Context, id domain.ID) error
}

const basePath = "/leave-types"

type restGateway struct {
	api API
}

func NewGateway(api API) Gateway {
	return &restGateway{api: api}
}

func typePath(id domain.ID) string {
	return basePath + "/" + url.PathEscape(id.String())
}

func (g *restGateway) List(ctx context.Context) ([]LeaveType, error) {
	var out []LeaveType
	if err := g.api.Get(ctx, basePath, &out, leavetypeerrors.MsgFetchFailed); err != nil {
		return nil, err
	}
	if out == nil {
		out = []LeaveType{}
	}
	return out, nil
}

func (g *restGateway) Get(ctx context.Context, id domain.ID) (LeaveType, error) {
	var out LeaveType
	err := g.api.Get(ctx, typePath(id), &out, leavetypeerrors.MsgGetFailed)
	return out, err
}

func (g *restGateway) Create(ctx context.Context, req LeaveTypeRequest) (LeaveType, error) {
	var out LeaveType
	err := g.api.Post(ctx, basePath, req, &out, leavetypeerrors.MsgCreateFailed)
	return out, err
}

func (g *restGateway) Update(ctx context.Context, id domain.ID, req LeaveTypeRequest) (LeaveType, error) {
	var out LeaveType
	err := g.api.Put(ctx, typePath(id), req, &out, leavetypeerrors.MsgUpdateFailed)
	return out, err
}

func (g *restGateway) Delete(ctx context.Context, id domain.ID) error {
	return g.api.Delete(ctx, typePath(id), nil, leavetypeerrors.MsgDeleteFailed)
}
