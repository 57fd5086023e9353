package app

import (
	"io"
	"os"
	"time"

	"github.com/jrsteele09/notate-dashboard/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global logger: human readable and verbose in
// DEV, JSON at info level elsewhere
func SetupLogging(c config.EnvConfig, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	if c.IsDev() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
}
