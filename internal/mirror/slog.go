package mirror

import (
	"context"
	"log/slog"

	v1 "github.com/loglens-io/loglens/internal/api/v1"
)

// SlogSink mirrors events to the process log. It is the fallback when
// no Redis stream is configured.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Write(_ context.Context, evt *v1.LogEvent) error {
	level := slog.LevelInfo
	switch evt.LogSeverity {
	case v1.SeverityWarn:
		level = slog.LevelWarn
	case v1.SeverityError, v1.SeverityFatal:
		level = slog.LevelError
	}

	s.logger.Log(context.Background(), level, "[Mirror] Event accepted",
		"service", evt.Service,
		"event_name", evt.EventName,
		"log_id", evt.LogID,
		"severity", evt.LogSeverity)
	return nil
}
