// Package sysutil holds process-level helpers shared by the courtdesk
// commands: global logger setup and environment flag parsing.
package sysutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel sets the global zerolog level. Unknown or empty values fall
// back to info; "warning" is accepted as an alias of warn.
func SetLogLevel(lvl string) {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" || level == zerolog.NoLevel || level < zerolog.DebugLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// LoggerOptions controls ConfigureLogger.
type LoggerOptions struct {
	Level   string
	Pretty  bool
	Out     io.Writer
	Service string
	Version string
}

// ConfigureLogger installs the global logger: level, optional console output,
// and service/version fields on every event.
func ConfigureLogger(o LoggerOptions) zerolog.Logger {
	SetLogLevel(o.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := o.Out
	if o.Pretty && out != nil {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	l := log.Logger
	if out != nil {
		l = zerolog.New(out).With().Timestamp().Logger()
	}
	ctx := l.With()
	if o.Service != "" {
		ctx = ctx.Str("service", o.Service)
	}
	if o.Version != "" {
		ctx = ctx.Str("version", o.Version)
	}
	log.Logger = ctx.Logger()
	return log.Logger
}

// IsTruthy reports whether an environment flag is set: "1", "true", "yes",
// "y" or "on", case-insensitively.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
