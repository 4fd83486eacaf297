package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/do"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/config"
)

// NewLogger builds the process logger. Events go to stderr; stdout is
// reserved for the validation report.
func NewLogger(cfg config.Config) (zerolog.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.Config, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Logging.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Logging.Level, err)
		}
		level = l
	}

	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
		}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service.Unit != "" {
		ctx = ctx.Str("unit", cfg.Service.Unit)
	}
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}

	return ctx.Logger().Level(level), nil
}

func Provide(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (zerolog.Logger, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to get config: %w", err)
		}
		return NewLogger(cfg)
	})
}

// Fatal logs through the global zerolog logger and exits. It's meant for
// errors that happen before the configured logger exists.
func Fatal(err any, msg string) {
	event := log.Fatal().Caller(1)
	if e, ok := err.(error); ok {
		event = event.Err(e)
	} else {
		event = event.Interface("error", err)
	}
	event.Msg(msg)
}
