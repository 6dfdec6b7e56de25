package kvstore

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
)

// Storage is the durable key/value capability the session layer persists into.
// Remove of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Driver identifiers
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config describes the storage selection parameters.
type Config struct {
	Driver string
	Path   string // file driver
	Redis  *RedisConfig
	SQLite *SQLiteConfig
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration // zero keeps keys until removed
}

// SQLiteConfig holds the database location.
type SQLiteConfig struct {
	DSN string
}

// New creates a storage backend based on the provided configuration.
func New(ctx context.Context, cfg Config) (Storage, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFile
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Path)
	case DriverRedis:
		if cfg.Redis == nil {
			return nil, apperrors.Wrapf(apperrors.ErrMissingConfig, "[kvstore New] redis configuration")
		}
		return NewRedis(ctx, *cfg.Redis)
	case DriverSQLite:
		if cfg.SQLite == nil {
			return nil, apperrors.Wrapf(apperrors.ErrMissingConfig, "[kvstore New] sqlite configuration")
		}
		return NewSQLite(ctx, *cfg.SQLite)
	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnsupportedStorage, "[kvstore New] %s", driver)
	}
}
