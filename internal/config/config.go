// Package config provides configuration helpers for go-egress commands.
package config

import "os"

// Default server configuration.
const (
	DefaultPort        = "8090"
	DefaultFloorHeight = 3.5
	DefaultGridWidth   = 100
	DefaultGridHeight  = 100
)

// Port returns the HTTP port from the EGRESS_PORT env var.
// Falls back to the provided default if not set.
func Port(def string) string {
	if p := os.Getenv("EGRESS_PORT"); p != "" {
		return p
	}
	return def
}

// LogLevel returns the log level from the EGRESS_LOG_LEVEL env var.
func LogLevel(def string) string {
	if l := os.Getenv("EGRESS_LOG_LEVEL"); l != "" {
		return l
	}
	return def
}
