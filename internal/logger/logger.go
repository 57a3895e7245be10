// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Development builds get a
// colourised console writer, production builds emit JSON lines.
func Init(level string, production bool) {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if production {
		out = os.Stderr
	}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// GooseLogger routes goose migration output through zerolog.
type GooseLogger struct{}

func (GooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Msgf(trimNewline(format), v...)
}

func (GooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msgf(trimNewline(format), v...)
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}
