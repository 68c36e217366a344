package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

// AuthService manages sessions issued by the local backend: refresh
// rotation, logout and access token validation.
type AuthService struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	issuer    ports.SessionIssuer
	users     ports.UserReader
	eventPub  ports.EventPublisher
	logger    *log.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tokenizer ports.Tokenizer,
	store ports.Store,
	issuer ports.SessionIssuer,
	users ports.UserReader,
	eventPub ports.EventPublisher,
	logger *log.Logger,
) *AuthService {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthService{
		tokenizer: tokenizer,
		store:     store,
		issuer:    issuer,
		users:     users,
		eventPub:  eventPub,
		logger:    logger,
	}
}

// Refresh rotates the refresh token and issues a new session
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.Session, error) {
	claims, err := s.tokenizer.RefreshTokenToClaims(refreshToken)
	if err != nil {
		return nil, err
	}

	invalidated, err := s.store.IsTokenInvalidated(ctx, claims.RefreshID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token invalidation: %w", err)
	}
	if invalidated {
		return nil, core.ErrTokenInvalidated
	}

	// Invalidate the old refresh token for the rest of its lifetime
	if err := s.store.InvalidateToken(ctx, claims.RefreshID, time.Until(claims.ExpiresAt)); err != nil {
		return nil, fmt.Errorf("failed to invalidate old token: %w", err)
	}

	session, err := s.issuer.IssueSession(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return session, nil
}

// Logout invalidates a refresh token and every access token issued with it
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenizer.RefreshTokenToClaims(refreshToken)
	if err != nil {
		return err
	}

	if err := s.store.InvalidateToken(ctx, claims.RefreshID, time.Until(claims.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogout(ctx, claims.UserID, claims.RefreshID); err != nil {
			// The token is already invalidated in the store, which is the critical part
			s.logger.Printf("Warning: failed to publish logout event: %v", err)
		}
	}

	return nil
}

// ValidateAccessToken parses an access token and checks that its refresh
// token has not been invalidated.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.Claims, error) {
	claims, err := s.tokenizer.AccessTokenToClaims(accessToken)
	if err != nil {
		return nil, err
	}

	if claims.RefreshID != "" {
		invalidated, err := s.store.IsTokenInvalidated(ctx, claims.RefreshID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token invalidation: %w", err)
		}
		if invalidated {
			return nil, core.ErrTokenInvalidated
		}
	}

	return claims, nil
}

// CurrentUser loads the user and profile behind a validated token
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*core.User, *core.Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}
