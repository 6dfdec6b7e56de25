package fakeapi

import (
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken *string `json:"refresh_token"`
}

func missingField(name string) validationIssue {
	return validationIssue{Loc: []string{"body", name}, Msg: "Field required", Type: "missing"}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
			return
		}

		var issues []validationIssue
		if req.Username == "" {
			issues = append(issues, missingField("username"))
		}
		if req.Password == "" {
			issues = append(issues, missingField("password"))
		}
		if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
			issues = append(issues, validationIssue{
				Loc:  []string{"body", "email"},
				Msg:  "value is not a valid email address",
				Type: "value_error",
			})
		}
		if len(issues) > 0 {
			writeValidationError(w, issues...)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.Error().Err(err).Msg("password hash failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		created, clash := s.db.addUser(user{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			CreatedAt:    s.nowTime(),
		})
		if clash != "" {
			writeError(w, http.StatusBadRequest, clash)
			return
		}
		writeJSON(w, http.StatusCreated, newUserResponse(created))
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, &req); err != nil {
			writeValidationError(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
			return
		}

		u, ok := s.db.userByName(req.Username)
		if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}

		access, refresh, err := s.tokenPair(u)
		if err != nil {
			s.logger.Error().Err(err).Msg("token issue failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "bearer",
			User:         newUserResponse(u),
		})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := s.readRefreshToken(w, r)
		if !ok {
			return
		}

		userID, valid := s.db.revokeRefreshToken(token, s.nowTime())
		u, found := s.db.userByID(userID)
		if !valid || !found {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}

		access, refresh, err := s.tokenPair(u)
		if err != nil {
			s.logger.Error().Err(err).Msg("token issue failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := s.readRefreshToken(w, r)
		if !ok {
			return
		}
		if _, revoked := s.db.revokeRefreshToken(token, s.nowTime()); !revoked {
			writeError(w, http.StatusBadRequest, "Invalid refresh token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

func (s *Server) readRefreshToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"})
		return "", false
	}
	if req.RefreshToken == nil {
		writeValidationError(w, missingField("refresh_token"))
		return "", false
	}
	return *req.RefreshToken, true
}

func (s *Server) tokenPair(u user) (string, string, error) {
	access, err := s.tokens.issue(u.Username)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.db.issueRefreshToken(u.ID, s.nowTime().Add(s.tokens.refreshTTL))
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
