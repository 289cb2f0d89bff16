package session

import (
	"math"
	"net/http"

	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Countdown is the part of the guard the session routes read.
type Countdown interface {
	Status() Status
	ExtendSession() error
}

type StatusResponse struct {
	State            State  `json:"state"`
	Email            string `json:"email,omitempty"`
	Role             string `json:"role,omitempty"`
	RemainingSeconds int    `json:"remainingSeconds"`
	Warning          bool   `json:"warning"`
}

func toStatusResponse(st Status) StatusResponse {
	return StatusResponse{
		State:            st.State,
		Email:            st.Email,
		Role:             st.Role.String(),
		RemainingSeconds: int(math.Ceil(st.Remaining.Seconds())),
		Warning:          st.State == StateWarning,
	}
}

type Handler struct {
	guard  Countdown
	logger *zap.Logger
}

func NewHandler(guard Countdown, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("session.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("session.handler")
	}
	return &Handler{guard: guard, logger: l}
}

// Status is the countdown poll. It never counts as activity.
func (h *Handler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, toStatusResponse(h.guard.Status()), nil)
}

// Extend is the "stay signed in" button on the warning dialog.
func (h *Handler) Extend(c *gin.Context) {
	if err := h.guard.ExtendSession(); err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Info("extend session refused", zap.String("message", httpErr.Message))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, gin.H{"redirect": "/login"})
		return
	}
	response.Success(c, http.StatusOK, toStatusResponse(h.guard.Status()), nil)
}
