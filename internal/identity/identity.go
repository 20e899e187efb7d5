package identity

import (
	"context"

	"build-streak-go/internal/models"
)

// Source resolves the current user session from one wallet-integration
// strategy. A nil session with a nil error means "no session here" — a
// normal state, not a failure. Sources never retry; the user retries by
// acting again.
type Source interface {
	Resolve(ctx context.Context) (*models.UserSession, error)
	// Subscribe registers a handler for out-of-band identity changes. A nil
	// session means the identity went away. Sources without a push channel
	// implement this as a no-op.
	Subscribe(handler func(*models.UserSession))
}
