package rules

import (
	"io"
	"log/slog"
)

func when(opts ...Option) *TriggerBuilder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return When(append([]Option{WithLogger(logger)}, opts...)...)
}

func noop(map[string]any) error { return nil }
