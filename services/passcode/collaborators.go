package passcode

import (
	"context"
	"time"
)

// Notifier delivers a freshly issued code to its identity out-of-band.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// SessionIssuer mints the bearer credential handed out after a successful
// verification.
type SessionIssuer interface {
	IssueSession(ctx context.Context, identity string, role Role, issuedAt time.Time) (string, error)
}
