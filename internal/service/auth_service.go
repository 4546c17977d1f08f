package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/auth"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// RegisterRoutes mounts Login on r.
func (s *AuthService) RegisterRoutes(r chi.Router, opts []connect.HandlerOption) {
	unary(r, Procedure(AuthServiceName, "Login"), s.Login, opts)
}

// Login checks the admin PIN and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	if req.Msg.PIN == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	role, err := s.authenticator.Authenticate(ctx, req.Msg.PIN)
	if errors.Is(err, auth.ErrNotConfigured) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if err != nil {
		slog.Warn("Login failed", "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, expires, err := s.jwtManager.Generate(role)
	if err != nil {
		slog.Error("Failed to generate token", "role", role, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Operator logged in", "role", role)
	return connect.NewResponse(&LoginResponse{Token: token, ExpiresAt: expires}), nil
}
