package auth

import (
	"context"

	"github.com/jrsteele09/web-analyzer-client/apiclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Remote auth endpoints, relative to the API base URL.
const (
	RouteRegister = "/auth/register"
	RouteLogin    = "/auth/login"
	RouteLogout   = "/auth/logout"
	RouteRefresh  = "/auth/refresh"
)

// Service wraps the remote authentication endpoints. It holds no session
// state of its own.
type Service struct {
	client *apiclient.Client
	logger zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger used for best-effort failures.
func WithServiceLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a Service that sends requests through client.
func NewService(client *apiclient.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] client is required")
	}
	s := &Service{client: client, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := apiclient.Post[RegisterResponse](ctx, s.client, RouteRegister, req, nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token and the user identity.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := apiclient.Post[LoginResponse](ctx, s.client, RouteLogin, req, nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the server the session is over. It is best effort: failures
// are logged and never returned, the caller clears local state regardless.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	_, err := apiclient.Post[map[string]any](ctx, s.client, RouteLogout, refreshTokenRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("logout call failed")
	}
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	resp, err := apiclient.Post[RefreshResponse](ctx, s.client, RouteRefresh, refreshTokenRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
