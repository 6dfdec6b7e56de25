package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	FakeAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAppVersion() string
	GetEnv() string
	GetDebugMode() bool
	GetLogLevel() string
	GetMetricsFile() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	FakeAPI
}

func New() Config {
	return mainConfig{}
}

// Load reads the optional env files into the process environment and returns
// the validated configuration. Variables already set are not overridden.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("[config Load] %s: %w", f, err)
		}
	}

	c := New()
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the values the client cannot run without are present.
func Validate(c Config) error {
	required := map[string]string{
		apiBaseURLVar:     c.GetAPIBaseURL(),
		authStorageKeyVar: c.GetAuthStorageKey(),
	}
	for name, value := range required {
		if value == "" {
			return apperrors.Wrapf(apperrors.ErrMissingConfig, "[config Validate] %s", name)
		}
	}
	return nil
}
