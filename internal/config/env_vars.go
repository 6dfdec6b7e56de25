package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	appNameVar     = "APP_NAME"
	appVersionVar  = "APP_VERSION"
	envVar         = "ENV"
	debugModeVar   = "DEBUG_MODE"
	logLevelVar    = "LOG_LEVEL"
	metricsFileVar = "METRICS_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "URL Analyzer")
}

func (EnvVars) GetAppVersion() string {
	return GetEnv(appVersionVar, "1.0.0")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv(envVar)
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetDebugMode() bool {
	return GetEnvBool(debugModeVar, false)
}

// GetLogLevel returns the zerolog level name. DEBUG_MODE forces debug.
func (e EnvVars) GetLogLevel() string {
	if e.GetDebugMode() {
		return "debug"
	}
	return strings.ToLower(GetEnv(logLevelVar, "info"))
}

// GetMetricsFile is the path of a prometheus textfile written on exit. Empty disables it.
func (EnvVars) GetMetricsFile() string {
	return GetEnv(metricsFileVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
