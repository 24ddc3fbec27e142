package service

import "context"

// Mailer delivers a single HTML message. Implementations must bound
// their own connection time; callers treat delivery as fire-and-forget.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
