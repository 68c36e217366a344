package ports

import (
	"context"
	"time"
)

// Store holds revoked refresh ids. An entry only needs to outlive the refresh
// token it revokes, so implementations may drop it after expiry.
type Store interface {
	InvalidateToken(ctx context.Context, tokenID string, expiry time.Duration) error
	IsTokenInvalidated(ctx context.Context, tokenID string) (bool, error)
}
