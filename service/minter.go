package service

import (
	"context"
	"fmt"
	"log"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

// SessionMinter establishes a backend session for a resolved identity.
//
// Credential backends only hand out sessions for email and password, so the
// minter signs in with the normalized wallet address as the password. When
// that fails it resets the password to the address and retries once. A
// backend that implements ports.SessionIssuer can mint directly instead.
type SessionMinter struct {
	admin  ports.AuthAdmin
	issuer ports.SessionIssuer
	logger *log.Logger
}

// NewSessionMinter creates a minter using the password round trip
func NewSessionMinter(admin ports.AuthAdmin, logger *log.Logger) *SessionMinter {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionMinter{admin: admin, logger: logger}
}

// WithIssuer makes the minter issue sessions by user id
func (m *SessionMinter) WithIssuer(issuer ports.SessionIssuer) *SessionMinter {
	m.issuer = issuer
	return m
}

// Mint returns a session for identity. Failures wrap core.ErrSession.
func (m *SessionMinter) Mint(ctx context.Context, identity core.WalletIdentity) (*core.Session, error) {
	if m.issuer != nil {
		session, err := m.issuer.IssueSession(ctx, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: issue session: %w", core.ErrSession, err)
		}
		return session, nil
	}

	password := core.NormalizeAddress(identity.WalletAddress)

	session, err := m.admin.SignInWithPassword(ctx, identity.Email, password)
	if err == nil {
		return session, nil
	}

	m.logger.Printf("user %s: sign in failed (%v), resetting password", identity.UserID, err)
	if err := m.admin.UpdateUserPassword(ctx, identity.UserID, password); err != nil {
		m.logger.Printf("user %s: password reset failed: %v", identity.UserID, err)
	}

	session, err = m.admin.SignInWithPassword(ctx, identity.Email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: sign in after password reset: %w", core.ErrSession, err)
	}
	return session, nil
}
