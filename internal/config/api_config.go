package config

import (
	"strings"
	"time"
)

const (
	apiBaseURLVar     = "API_BASE_URL"
	apiTimeoutVar     = "API_TIMEOUT"
	authStorageKeyVar = "AUTH_STORAGE_KEY"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetAuthStorageKey() string
}

type API struct{}

var _ APIConfig = API{}

func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8000/api/v1"), "/")
}

// GetAPITimeout reads API_TIMEOUT in milliseconds.
func (API) GetAPITimeout() time.Duration {
	return time.Duration(GetEnvInt(apiTimeoutVar, 30000)) * time.Millisecond
}

func (API) GetAuthStorageKey() string {
	return GetEnv(authStorageKeyVar, "webAnalyzer_auth")
}
