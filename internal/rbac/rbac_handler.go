package rbac

import (
	"net/http"
	"strings"

	"leave-portal/internal/domain"
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
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Permissions lists what the signed-in role may do so the UI can hide
// controls it would only get a 403 for.
func (h *Handler) Permissions(c *gin.Context) {
	role, _ := domain.ParseRole(c.GetString("role"))

	perms, err := h.service.Permissions(role)
	if err != nil {
		h.logger.Error("list permissions failed", zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role, "permissions": perms}, nil)
}

// Enforce answers a single resource/action question for the signed-in role.
func (h *Handler) Enforce(c *gin.Context) {
	var req EnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}
	req.Role = c.GetString("role")
	req.Resource = strings.TrimSpace(req.Resource)
	req.Action = strings.TrimSpace(req.Action)
	if err := apperror.Validator().Struct(req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	allowed, err := h.service.Enforce(req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, EnforceResponse{Allowed: allowed}, nil)
}
