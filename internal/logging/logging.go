package logging

import (
	"io"
	"os"

	"nexus-points/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var sink io.Writer = os.Stdout

// Init configures the global zerolog logger from LogConfig. When a log file
// is set, output goes through a size-capped writer instead of stdout.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	sink = os.Stdout
	if cfg.File != "" {
		if w, werr := newSizeLimitedWriter(cfg.File, cfg.MaxMB); werr == nil {
			sink = w
		}
	}

	output := sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the active sink so the HTTP request logger shares the
// destination (and the size cap) with the application logger.
func Writer() io.Writer {
	return sink
}
