package observability

import (
	"io"
	"log/slog"
	"os"
)

func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: env == "dev",
	})

	// span and request ids are added per record from the context
	return slog.New(NewTraceHandler(handler)).With(
		slog.String("service", "devevents"),
		slog.String("env", env),
	)
}
