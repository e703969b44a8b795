package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger writing human-readable lines to w.
// In stdio mode standard output carries the MCP protocol, so the logger is
// silent unless debug logging is enabled.
func (c *Config) NewLogger(w io.Writer) zerolog.Logger {
	if c.IsStdioMode() && !c.IsDebug() {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Str("mode", c.Mode).
		Logger()
}
