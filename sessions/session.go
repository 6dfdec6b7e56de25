package sessions

import (
	"github.com/jrsteele09/web-analyzer-client/internal/utils"
)

// UserIdentity is the authenticated user as returned by the login endpoint.
type UserIdentity struct {
	ID       utils.FlexString `json:"id"`       // Server user id (numeric ids are kept as strings)
	Username string           `json:"username"` // Login name
	Email    string           `json:"email"`    // Email address
}

// Valid reports whether every identity field is present.
func (u *UserIdentity) Valid() bool {
	return u != nil && u.ID != "" && u.Username != "" && u.Email != ""
}

// Record is the persisted proof of authentication. It is stored as one JSON
// blob and always replaced as a whole.
type Record struct {
	AccessToken  string        `json:"access_token"`            // Bearer token sent on every request
	TokenType    string        `json:"token_type"`              // Token type reported by the server
	RefreshToken string        `json:"refresh_token,omitempty"` // Set when the login response carried one
	User         *UserIdentity `json:"user"`                    // Identity the token was issued to
	LoggedIn     bool          `json:"isLoggedIn"`              // Always true for a stored record
}

// Valid reports whether the record is fully formed. Anything else is treated
// as if no record existed.
func (r *Record) Valid() bool {
	return r != nil &&
		r.LoggedIn &&
		r.AccessToken != "" &&
		r.TokenType != "" &&
		r.User.Valid()
}
