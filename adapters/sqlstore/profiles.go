package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibearcade/arcade/core"
)

const profileColumns = `id, username, display_name, wallet_address, avatar_url, bio, website_url, created_at, updated_at`

// FindProfileByWallet returns the profile whose wallet_address equals the
// given address exactly. Callers normalize the address first.
func (s *Store) FindProfileByWallet(ctx context.Context, walletAddress string) (*core.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+profileColumns+` FROM profiles WHERE wallet_address = ?`), walletAddress))
}

// GetProfile loads a profile by user id
func (s *Store) GetProfile(ctx context.Context, id string) (*core.Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`), id))
}

func scanProfile(row *sql.Row) (*core.Profile, error) {
	var (
		p                                     core.Profile
		display, wallet, avatar, bio, website sql.NullString
		createdAt, updatedAt                  int64
	)
	err := row.Scan(&p.ID, &p.Username, &display, &wallet, &avatar, &bio, &website, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.DisplayName = display.String
	p.WalletAddress = wallet.String
	p.AvatarURL = avatar.String
	p.Bio = bio.String
	p.WebsiteURL = website.String
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
