package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignupNotice describes a freshly registered member waiting for approval.
type SignupNotice struct {
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	JoinedAt  time.Time
}

// Notifier delivers out-of-band notices. Callers treat failures as
// non-critical.
type Notifier interface {
	NotifySignup(ctx context.Context, notice SignupNotice) error
}

// Noop discards every notice. Used when mail is not configured.
type Noop struct{}

func (Noop) NotifySignup(context.Context, SignupNotice) error { return nil }
