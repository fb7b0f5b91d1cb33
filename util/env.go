package util

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

func EnvOrDefault(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// LogLevel resolves the logrus level from PVA_LOG_LEVEL, forced to debug when debug is set.
func LogLevel(debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(strings.TrimSpace(EnvOrDefault("PVA_LOG_LEVEL", "info")))
	if err != nil {
		log.Warnf("Bad PVA_LOG_LEVEL, using info: %v", err)
		return log.InfoLevel
	}
	return lvl
}
