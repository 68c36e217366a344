package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibearcade/arcade/core"
)

// UserRecord is a user row including its password hash
type UserRecord struct {
	core.User
	PasswordHash string
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, email, password_hash, email_confirmed, wallet_address, username, created_at`

// InsertUser stores a user and its profile in one transaction. It returns
// core.ErrUserExists when the email or wallet address is already taken.
func (s *Store) InsertUser(ctx context.Context, rec UserRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := s.insertUser(ctx, tx, rec)
	if err != nil {
		return err
	}
	if !inserted {
		return core.ErrUserExists
	}

	inserted, err = s.insertProfile(ctx, tx, rec.User)
	if err != nil {
		return err
	}
	if !inserted {
		return core.ErrUserExists
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert user: %w", err)
	}
	return nil
}

// UpsertWalletUser returns the user owning rec's wallet address, creating the
// user and its profile when absent. Lookup and insert share one transaction
// and rely on the unique email and wallet_address constraints, so concurrent
// first logins for one wallet end up with a single user.
func (s *Store) UpsertWalletUser(ctx context.Context, rec UserRecord) (*core.User, bool, error) {
	wallet := rec.Metadata.WalletAddress
	if wallet == "" {
		return nil, false, fmt.Errorf("wallet address is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin upsert wallet user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.userByWallet(ctx, tx, wallet)
	switch {
	case err == nil:
		return &existing.User, false, tx.Commit()
	case !errors.Is(err, core.ErrNotFound):
		return nil, false, err
	}

	inserted, err := s.insertUser(ctx, tx, rec)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// Lost the race to a concurrent login for the same wallet.
		other, err := s.userByEmail(ctx, tx, rec.Email)
		if err != nil {
			return nil, false, err
		}
		return &other.User, false, tx.Commit()
	}

	inserted, err = s.insertProfile(ctx, tx, rec.User)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return nil, false, core.ErrUserExists
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit upsert wallet user: %w", err)
	}
	return &rec.User, true, nil
}

// GetUser loads a user by id
func (s *Store) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
}

// GetUserByEmail loads a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return s.userByEmail(ctx, s.db, email)
}

// UpdatePasswordHash replaces a user's password hash
func (s *Store) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		hash, toMillis(s.now()), id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CountUsers returns the number of users
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) insertUser(ctx context.Context, q execQuerier, rec UserRecord) (bool, error) {
	now := toMillis(s.now())
	res, err := q.ExecContext(ctx, s.rebind(`
INSERT INTO users (id, email, password_hash, email_confirmed, wallet_address, username, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO NOTHING`),
		rec.ID, rec.Email, rec.PasswordHash, rec.EmailConfirmed,
		nullString(rec.Metadata.WalletAddress), nullString(rec.Metadata.Username), now, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return n > 0, nil
}

// insertProfile mirrors the user's metadata onto a new profile row.
func (s *Store) insertProfile(ctx context.Context, q execQuerier, u core.User) (bool, error) {
	username := u.Metadata.Username
	if username == "" {
		username = u.Email
	}

	now := toMillis(s.now())
	res, err := q.ExecContext(ctx, s.rebind(`
INSERT INTO profiles (id, username, display_name, wallet_address, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`),
		u.ID, username, username, nullString(u.Metadata.WalletAddress), now, now,
	)
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert profile: %w", err)
	}
	return n > 0, nil
}

func (s *Store) userByEmail(ctx context.Context, q execQuerier, email string) (*UserRecord, error) {
	return s.scanUser(q.QueryRowContext(ctx, s.rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), email))
}

func (s *Store) userByWallet(ctx context.Context, q execQuerier, wallet string) (*UserRecord, error) {
	return s.scanUser(q.QueryRowContext(ctx, s.rebind(`
SELECT u.id, u.email, u.password_hash, u.email_confirmed, u.wallet_address, u.username, u.created_at
FROM users u JOIN profiles p ON p.id = u.id
WHERE p.wallet_address = ?`), wallet))
}

func (s *Store) scanUser(row *sql.Row) (*UserRecord, error) {
	var (
		rec       UserRecord
		wallet    sql.NullString
		username  sql.NullString
		createdAt int64
	)
	err := row.Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &rec.EmailConfirmed, &wallet, &username, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	rec.Metadata = core.UserMetadata{WalletAddress: wallet.String, Username: username.String}
	rec.CreatedAt = fromMillis(createdAt)
	return &rec, nil
}
