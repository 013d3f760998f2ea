package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

// GetEnv returns the value of key or defaultVal when unset/empty.
// The fallback is logged at debug so a misconfigured deploy is visible.
func GetEnv(key, defaultVal string, log *logger.Logger) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		if log != nil && defaultVal != "" {
			log.Debug("env var unset, using default", "key", key, "default", defaultVal)
		}
		return defaultVal
	}
	return v
}

// GetEnvAsInt parses key as an integer, falling back on parse failure.
func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("env var is not an integer, using default", "key", key, "value", v, "default", defaultVal)
		}
		return defaultVal
	}
	return n
}

// GetEnvAsBool parses key as a boolean, falling back on parse failure.
func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		if log != nil {
			log.Warn("env var is not a boolean, using default", "key", key, "value", v, "default", defaultVal)
		}
		return defaultVal
	}
	return b
}
