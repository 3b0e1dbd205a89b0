package logging

import "strings"

// LevelFromString converts a config string ("debug", "info", "warn",
// "error") into a LogLevel, defaulting to INFO for anything else.
func LevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
