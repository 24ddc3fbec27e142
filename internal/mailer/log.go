package mailer

import (
	"context"
	"log/slog"
)

// LogMailer is the development fallback when no SMTP credentials are
// configured: it records the delivery instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	slog.Info("mail suppressed (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
