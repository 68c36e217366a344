package service

import (
	"context"
	"log"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

// LoginResult is the outcome of a successful wallet login
type LoginResult struct {
	Session  *core.Session
	Identity core.WalletIdentity
	NewUser  bool
}

// WalletBridge turns a signed wallet message into a backend session. The
// steps run strictly in order and the first error aborts the login.
type WalletBridge struct {
	verifier *SignatureVerifier
	resolver *IdentityResolver
	minter   *SessionMinter
	eventPub ports.EventPublisher
	logger   *log.Logger
}

// NewWalletBridge creates a new bridge
func NewWalletBridge(
	verifier *SignatureVerifier,
	resolver *IdentityResolver,
	minter *SessionMinter,
	eventPub ports.EventPublisher,
	logger *log.Logger,
) *WalletBridge {
	if logger == nil {
		logger = log.Default()
	}
	return &WalletBridge{
		verifier: verifier,
		resolver: resolver,
		minter:   minter,
		eventPub: eventPub,
		logger:   logger,
	}
}

// Authenticate verifies the signature, resolves the identity and mints a
// session. Errors wrap core.ErrAuthentication, core.ErrIdentityCreation or
// core.ErrSession.
func (b *WalletBridge) Authenticate(ctx context.Context, login core.WalletLogin) (*LoginResult, error) {
	b.logger.Printf("wallet auth request for %s", login.WalletAddress)

	if _, err := b.verifier.Verify(login.WalletAddress, login.Message, login.Signature); err != nil {
		b.logger.Printf("wallet %s: signature verification failed: %v", login.WalletAddress, err)
		return nil, err
	}

	identity, created, err := b.resolver.Resolve(ctx, login.WalletAddress)
	if err != nil {
		b.logger.Printf("wallet %s: %v", login.WalletAddress, err)
		return nil, err
	}
	if created {
		b.logger.Printf("wallet %s: new user %s", identity.WalletAddress, identity.UserID)
	}

	session, err := b.minter.Mint(ctx, identity)
	if err != nil {
		b.logger.Printf("wallet %s: %v", identity.WalletAddress, err)
		return nil, err
	}

	if b.eventPub != nil {
		event := ports.WalletLoginEvent{
			UserID:        identity.UserID,
			WalletAddress: identity.WalletAddress,
			NewUser:       created,
		}
		if err := b.eventPub.PublishWalletLogin(ctx, event); err != nil {
			// The session is already minted; the event is informational.
			b.logger.Printf("Warning: failed to publish wallet login event: %v", err)
		}
	}

	return &LoginResult{Session: session, Identity: identity, NewUser: created}, nil
}
