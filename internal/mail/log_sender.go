package mail

import (
	"context"
	"log/slog"
)

// LogSender records outgoing mail in the log instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail not delivered, smtp disabled", "to", msg.To, "subject", msg.Subject)
	return nil
}
