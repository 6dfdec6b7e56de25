package auth

import (
	"github.com/jrsteele09/web-analyzer-client/internal/utils"
	"github.com/jrsteele09/web-analyzer-client/sessions"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken  string                `json:"access_token"`
	TokenType    string                `json:"token_type"`
	RefreshToken string                `json:"refresh_token,omitempty"`
	User         sessions.UserIdentity `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the created account. Registration never issues a token.
type RegisterResponse struct {
	ID        utils.FlexString `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	CreatedAt string           `json:"created_at"`
}

// RefreshResponse is returned by POST /auth/refresh.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
