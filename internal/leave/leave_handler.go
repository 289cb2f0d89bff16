package leave

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"leave-portal/internal/domain"
	leaveerrors "leave-portal/internal/leave/errors"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Workflow is what the portal routes drive. *Controller implements it.
type Workflow interface {
	ListScope(ctx context.Context, scope Scope) ([]LeaveApplication, error)
	Get(ctx context.Context, id domain.ID) (LeaveApplication, error)
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveApplication, error)
	Update(ctx context.Context, id domain.ID, req UpdateLeaveRequest) (LeaveApplication, error)
	Approve(ctx context.Context, id domain.ID) error
	Reject(ctx context.Context, id domain.ID, reason string) error
	Remove(ctx context.Context, id domain.ID) error
	Summary() Summary
	LastError() string
}

type Handler struct {
	workflow Workflow
	logger   *zap.Logger
}

func NewHandler(workflow Workflow, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{workflow: workflow, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func paramID(c *gin.Context) (domain.ID, bool) {
	id := domain.ID(strings.TrimSpace(c.Param("id")))
	return id, !id.IsZero()
}

func (h *Handler) GetAll(c *gin.Context) {
	scope, err := ParseScope(c.Query("scope"), c.GetString("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, err := h.workflow.ListScope(c.Request.Context(), scope)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filter := Filter{
		Search:    c.Query("search"),
		LeaveType: c.Query("type"),
		SortBy:    c.DefaultQuery("sort", SortAppliedDate),
		Desc:      c.DefaultQuery("order", "desc") == "desc",
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := ParseStatus(raw)
		if !ok {
			h.writeServiceError(c, apperror.InvalidField("status"))
			return
		}
		filter.Status = st
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	items, meta := response.Paginate(filter.Apply(items), page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) Summary(c *gin.Context) {
	scope, err := ParseScope(c.Query("scope"), c.GetString("user_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if _, err := h.workflow.ListScope(c.Request.Context(), scope); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.workflow.Summary(), nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return
	}

	resp, err := h.workflow.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.workflow.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return
	}

	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.workflow.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return
	}

	if err := h.workflow.Approve(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.mutationResult(id, StatusApproved), nil)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return
	}

	var req RejectLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http reject leave bind failed", zap.Error(err))
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	if err := h.workflow.Reject(c.Request.Context(), id, req.Reason); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, h.mutationResult(id, StatusRejected), nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leaveerrors.ErrInvalidLeaveID)
		return
	}

	if err := h.workflow.Remove(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true, "refreshError": h.workflow.LastError()}, nil)
}

// mutationResult carries the refresh failure, if any, so the view can show
// it inline next to the success.
func (h *Handler) mutationResult(id domain.ID, status Status) gin.H {
	return gin.H{"id": id, "status": status, "refreshError": h.workflow.LastError()}
}
