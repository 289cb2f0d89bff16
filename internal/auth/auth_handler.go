package auth

import (
	"context"
	"net/http"

	"leave-portal/internal/session"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionManager is the part of the session guard the auth routes drive.
type SessionManager interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Logout(ctx context.Context)
}

type Handler struct {
	service  Service
	sessions SessionManager
	logger   *zap.Logger
}

func NewHandler(service Service, sessions SessionManager, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: service, sessions: sessions, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("auth request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.writeServiceError(c, err)
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, SessionResponse{
		Email:  sess.Email,
		Role:   sess.Role.String(),
		Name:   sess.Name,
		UserID: sess.UserID,
	}, nil)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, "Logout success.", nil)
}
