// Package localauth is a self-hosted auth backend: users and profiles live in
// sqlstore, passwords are bcrypt hashes and sessions are JWTs from the
// tokenizer.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibearcade/arcade/adapters/sqlstore"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 120 * time.Hour // 5 days
)

// Backend implements ports.AuthAdmin, ports.SessionIssuer,
// ports.IdentityUpserter, ports.ProfileStore and ports.UserReader.
type Backend struct {
	store      *sqlstore.Store
	tokenizer  ports.Tokenizer
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
}

// Option configures a Backend
type Option func(*Backend)

// WithTTLs overrides the access and refresh token lifetimes. Zero keeps the
// default.
func WithTTLs(access, refresh time.Duration) Option {
	return func(b *Backend) {
		if access > 0 {
			b.accessTTL = access
		}
		if refresh > 0 {
			b.refreshTTL = refresh
		}
	}
}

// WithHashCost sets the bcrypt cost
func WithHashCost(cost int) Option {
	return func(b *Backend) { b.hashCost = cost }
}

// NewBackend creates a new local backend
func NewBackend(store *sqlstore.Store, tokenizer ports.Tokenizer, opts ...Option) *Backend {
	b := &Backend{
		store:      store,
		tokenizer:  tokenizer,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateUser creates a user and its profile
func (b *Backend) CreateUser(ctx context.Context, user core.NewUser) (*core.User, error) {
	rec, err := b.newRecord(user)
	if err != nil {
		return nil, err
	}
	if err := b.store.InsertUser(ctx, rec); err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// UpsertWalletUser finds or creates the user for user.Metadata.WalletAddress
// in one transaction.
func (b *Backend) UpsertWalletUser(ctx context.Context, user core.NewUser) (*core.User, bool, error) {
	rec, err := b.newRecord(user)
	if err != nil {
		return nil, false, err
	}
	return b.store.UpsertWalletUser(ctx, rec)
}

// UpdateUserPassword replaces the password of an existing user
func (b *Backend) UpdateUserPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return b.store.UpdatePasswordHash(ctx, userID, string(hash))
}

// SignInWithPassword checks the credentials and issues a session
func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) (*core.Session, error) {
	rec, err := b.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, core.ErrBadCredentials
	}

	return b.issue(&rec.User)
}

// IssueSession mints a session for userID without checking a password.
func (b *Backend) IssueSession(ctx context.Context, userID string) (*core.Session, error) {
	rec, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return b.issue(&rec.User)
}

// FindProfileByWallet implements ports.ProfileStore
func (b *Backend) FindProfileByWallet(ctx context.Context, walletAddress string) (*core.Profile, error) {
	return b.store.FindProfileByWallet(ctx, walletAddress)
}

// GetUser implements ports.UserReader
func (b *Backend) GetUser(ctx context.Context, userID string) (*core.User, error) {
	rec, err := b.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// GetProfile implements ports.UserReader
func (b *Backend) GetProfile(ctx context.Context, userID string) (*core.Profile, error) {
	return b.store.GetProfile(ctx, userID)
}

func (b *Backend) newRecord(user core.NewUser) (sqlstore.UserRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), b.hashCost)
	if err != nil {
		return sqlstore.UserRecord{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return sqlstore.UserRecord{
		User: core.User{
			ID:             uuid.NewString(),
			Email:          user.Email,
			EmailConfirmed: user.EmailConfirm,
			Metadata:       user.Metadata,
			CreatedAt:      b.now().UTC(),
		},
		PasswordHash: string(hash),
	}, nil
}

func (b *Backend) issue(user *core.User) (*core.Session, error) {
	now := b.now()
	session := &core.Session{
		ID:            uuid.NewString(),
		TokenType:     "bearer",
		IssuedAt:      now,
		AccessExpiry:  now.Add(b.accessTTL),
		RefreshExpiry: now.Add(b.refreshTTL),
		RefreshID:     uuid.NewString(),
		User:          user,
	}

	access, err := b.tokenizer.SessionToAccessToken(session, user)
	if err != nil {
		return nil, err
	}
	refresh, err := b.tokenizer.SessionToRefreshToken(session, user)
	if err != nil {
		return nil, err
	}

	session.AccessToken = access
	session.RefreshToken = refresh
	session.ExpiresIn = int64(b.accessTTL / time.Second)
	session.ExpiresAt = session.AccessExpiry.Unix()
	return session, nil
}

var (
	_ ports.AuthAdmin        = (*Backend)(nil)
	_ ports.SessionIssuer    = (*Backend)(nil)
	_ ports.IdentityUpserter = (*Backend)(nil)
	_ ports.ProfileStore     = (*Backend)(nil)
	_ ports.UserReader       = (*Backend)(nil)
)
