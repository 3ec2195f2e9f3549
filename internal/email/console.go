package email

import (
	"context"
	"log/slog"
)

// ConsoleSender logs mail instead of sending it. Used locally so magic links
// show up in the server output without a Postmark account.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) (string, error) {
	s.logger.Info("email (console sink)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return "console", nil
}
