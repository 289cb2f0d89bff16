package leavetype

import (
	"net/http"
	"strings"

	"leave-portal/internal/domain"
	leavetypeerrors "leave-portal/internal/leavetype/errors"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leavetype.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave type request failed",
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
	resp, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if c.Query("active") == "true" {
		active := resp[:0]
		for _, t := range resp {
			if t.IsActive {
				active = append(active, t)
			}
		}
		resp = active
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leavetypeerrors.ErrInvalidLeaveTypeID)
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLeaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leavetypeerrors.ErrInvalidLeaveTypeID)
		return
	}

	var req UpdateLeaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		h.writeServiceError(c, leavetypeerrors.ErrInvalidLeaveTypeID)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
