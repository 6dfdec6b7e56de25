package config

import (
	"os"
	"path/filepath"
)

const (
	storageDriverVar = "STORAGE_DRIVER"
	storagePathVar   = "STORAGE_PATH"
	redisAddrVar     = "REDIS_ADDR"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"
	redisPrefixVar   = "REDIS_PREFIX"
	sqliteDSNVar     = "SQLITE_DSN"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStoragePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSQLiteDSN() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageDriver() string {
	return GetEnv(storageDriverVar, "file")
}

// GetStoragePath defaults to <user config dir>/web-analyzer/session.json
func (Storage) GetStoragePath() string {
	if p := GetEnv(storagePathVar, ""); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "web-analyzer", "session.json")
}

func (Storage) GetRedisAddr() string {
	return GetEnv(redisAddrVar, "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt(redisDBVar, 0)
}

func (Storage) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "webanalyzer:")
}

func (Storage) GetSQLiteDSN() string {
	return GetEnv(sqliteDSNVar, "web-analyzer.db")
}
