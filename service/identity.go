package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

// IdentityResolver maps a verified wallet address to its backend user,
// creating the user on first login.
type IdentityResolver struct {
	profiles     ports.ProfileStore
	admin        ports.AuthAdmin
	upserter     ports.IdentityUpserter
	walletDomain string
	logger       *log.Logger
}

// NewIdentityResolver creates a resolver. When admin also implements
// ports.IdentityUpserter, resolution is a single atomic upsert.
func NewIdentityResolver(profiles ports.ProfileStore, admin ports.AuthAdmin, walletDomain string, logger *log.Logger) *IdentityResolver {
	if walletDomain == "" {
		walletDomain = core.DefaultWalletDomain
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &IdentityResolver{
		profiles:     profiles,
		admin:        admin,
		walletDomain: walletDomain,
		logger:       logger,
	}
	if up, ok := admin.(ports.IdentityUpserter); ok {
		r.upserter = up
	}
	return r
}

// Resolve returns the identity for address and whether it was created by
// this call. Failures wrap core.ErrIdentityCreation.
func (r *IdentityResolver) Resolve(ctx context.Context, address string) (core.WalletIdentity, bool, error) {
	wallet := core.NormalizeAddress(address)
	identity := core.WalletIdentity{
		WalletAddress: wallet,
		Email:         core.WalletEmail(wallet, r.walletDomain),
	}

	// The random password is never used to sign in; the minter resets it.
	newUser := core.NewUser{
		Email:        identity.Email,
		Password:     uuid.NewString(),
		EmailConfirm: true,
		Metadata: core.UserMetadata{
			WalletAddress: wallet,
			Username:      core.ShortAddress(address),
		},
	}

	if r.upserter != nil {
		user, created, err := r.upserter.UpsertWalletUser(ctx, newUser)
		if err != nil {
			return core.WalletIdentity{}, false, fmt.Errorf("%w: %w", core.ErrIdentityCreation, err)
		}
		identity.UserID = user.ID
		return identity, created, nil
	}

	profile, err := r.profiles.FindProfileByWallet(ctx, wallet)
	switch {
	case err == nil:
		identity.UserID = profile.ID
		return identity, false, nil
	case !errors.Is(err, core.ErrNotFound):
		return core.WalletIdentity{}, false, fmt.Errorf("%w: lookup profile: %w", core.ErrIdentityCreation, err)
	}

	user, err := r.admin.CreateUser(ctx, newUser)
	if errors.Is(err, core.ErrUserExists) {
		// A concurrent first login for the same wallet got there first.
		r.logger.Printf("wallet %s: user already exists, re-reading profile", wallet)
		profile, lookupErr := r.profiles.FindProfileByWallet(ctx, wallet)
		if lookupErr != nil {
			return core.WalletIdentity{}, false, fmt.Errorf("%w: %w", core.ErrIdentityCreation, err)
		}
		identity.UserID = profile.ID
		return identity, false, nil
	}
	if err != nil {
		return core.WalletIdentity{}, false, fmt.Errorf("%w: create user: %w", core.ErrIdentityCreation, err)
	}

	identity.UserID = user.ID
	return identity, true, nil
}
