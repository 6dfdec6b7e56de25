package config

import "time"

const (
	fakeAPIAddrVar       = "FAKEAPI_ADDR"
	fakeAPISigningKeyVar = "FAKEAPI_SIGNING_KEY"
	accessTokenTTLVar    = "ACCESS_TOKEN_EXPIRE_MINUTES"
)

// FakeAPIConfig configures the local development server in cmd/fakeapi.
type FakeAPIConfig interface {
	GetFakeAPIAddr() string
	GetFakeAPISigningKey() string
	GetAccessTokenTTL() time.Duration
}

type FakeAPI struct{}

var _ FakeAPIConfig = FakeAPI{}

func (FakeAPI) GetFakeAPIAddr() string {
	return GetEnv(fakeAPIAddrVar, ":8000")
}

// GetFakeAPISigningKey returns the HMAC key for access tokens. Empty means a
// random key per process.
func (FakeAPI) GetFakeAPISigningKey() string {
	return GetEnv(fakeAPISigningKeyVar, "")
}

func (FakeAPI) GetAccessTokenTTL() time.Duration {
	minutes := GetEnvInt(accessTokenTTLVar, 15)
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}
