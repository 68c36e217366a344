package ports

import (
	"context"

	"github.com/vibearcade/arcade/core"
)

// AuthAdmin is the backend authentication service as seen by a
// service-role caller.
type AuthAdmin interface {
	// CreateUser creates a user. It returns core.ErrUserExists when the
	// email is taken.
	CreateUser(ctx context.Context, user core.NewUser) (*core.User, error)

	// UpdateUserPassword replaces the password of an existing user.
	UpdateUserPassword(ctx context.Context, userID, password string) error

	// SignInWithPassword returns a session for valid credentials.
	SignInWithPassword(ctx context.Context, email, password string) (*core.Session, error)
}

// ProfileStore looks profiles up by wallet address
type ProfileStore interface {
	// FindProfileByWallet returns core.ErrNotFound when no profile carries
	// the address.
	FindProfileByWallet(ctx context.Context, walletAddress string) (*core.Profile, error)
}

// SessionIssuer mints a session for a known user id without a password
// round trip. Backends that can do this implement it next to AuthAdmin.
type SessionIssuer interface {
	IssueSession(ctx context.Context, userID string) (*core.Session, error)
}

// IdentityUpserter resolves a wallet user with a single atomic
// insert-if-absent.
type IdentityUpserter interface {
	UpsertWalletUser(ctx context.Context, user core.NewUser) (u *core.User, created bool, err error)
}

// UserReader loads users and profiles by id
type UserReader interface {
	GetUser(ctx context.Context, userID string) (*core.User, error)
	GetProfile(ctx context.Context, userID string) (*core.Profile, error)
}
