// Package util holds small helpers that do not belong to any one component.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean flag from the environment. A missing variable
// yields fallback; true/1/yes/on and false/0/no/off are recognized in any
// case, and anything else is logged and treated as the fallback.
func ParseBoolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("ParseBoolEnv ignoring unrecognized value", "key", key, "value", raw, "fallback", fallback)
	return fallback
}
