package auth

import (
	"context"
	"strings"

	"leave-portal/internal/apiclient"
	autherrors "leave-portal/internal/auth/errors"
	"leave-portal/internal/domain"
	"leave-portal/internal/session"
	"leave-portal/internal/shared/apperror"
	"leave-portal/internal/shared/contextutil"

	"go.uber.org/zap"
)

// API is the slice of the REST client the auth calls need.
type API interface {
	Post(ctx context.Context, path string, body, out any, fallback string) error
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (session.LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
}

type service struct {
	api    API
	logger *zap.Logger
}

// NewService returns the user-account client. It also satisfies
// session.Authenticator so the guard can sign users in through it.
func NewService(api API, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{api: api, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	var resp loginResponse
	err := s.api.Post(ctx, "/users/login", LoginRequest{Email: email, Password: password}, &resp, autherrors.ErrInvalidCredentials.Message)
	if err != nil {
		// A bare 401 from the login endpoint means bad credentials, not an
		// expired session.
		if appErr, ok := apperror.As(err); ok && appErr.Code == apperror.CodeUnauthorized && appErr.Message == apiclient.SessionExpiredMessage {
			return session.LoginResult{}, autherrors.ErrInvalidCredentials
		}
		log.Warn("login rejected", zap.String("email", email), zap.Error(err))
		return session.LoginResult{}, err
	}
	if strings.TrimSpace(resp.Token) == "" {
		return session.LoginResult{}, autherrors.ErrEmptyToken
	}

	userID := resp.UserID
	if userID.IsZero() {
		userID = resp.ID
	}
	if resp.Email == "" {
		resp.Email = email
	}

	log.Info("login accepted", zap.String("email", resp.Email), zap.String("role", resp.Role))
	return session.LoginResult{
		Token:  resp.Token,
		Email:  resp.Email,
		Role:   resp.Role,
		Name:   resp.Name,
		UserID: userID.String(),
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := apperror.Validator().Struct(req); err != nil {
		return UserResponse{}, apperror.MapValidationError(err)
	}

	role := domain.RoleEmployee
	if r, ok := domain.ParseRole(req.Role); ok {
		role = r
	}

	payload := registerPayload{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role.String(),
	}

	var resp UserResponse
	if err := s.api.Post(ctx, "/users/register", payload, &resp, autherrors.ErrRegistrationFailed.Message); err != nil {
		if apperror.HasCode(err, apperror.CodeConflict) && apperror.Message(err, "") == autherrors.ErrRegistrationFailed.Message {
			return UserResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		log.Warn("register failed", zap.String("email", req.Email), zap.Error(err))
		return UserResponse{}, err
	}

	if resp.Email == "" {
		resp.Email = payload.Email
		resp.Name = payload.Name
	}
	if resp.Role == "" {
		resp.Role = payload.Role
	}
	log.Info("user registered", zap.String("email", resp.Email), zap.String("role", resp.Role))
	return resp, nil
}
