package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vibearcade/arcade/core"
)

// InsertGame stores a game. Empty ids and zero timestamps are filled in.
func (s *Store) InsertGame(ctx context.Context, g core.Game) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	if g.Status == "" {
		g.Status = core.GameStatusPending
	}
	if g.HostType == "" {
		g.HostType = "external"
	}
	if g.AspectRatio == "" {
		g.AspectRatio = "16:9"
	}

	var price decimal.NullDecimal
	if g.PriceUSD != nil {
		price = decimal.NewNullDecimal(*g.PriceUSD)
	}
	var published sql.NullInt64
	if g.PublishedAt != nil {
		published = sql.NullInt64{Int64: toMillis(*g.PublishedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO games (id, title, description, thumbnail_url, play_url, host_type, aspect_ratio,
    price_usd, status, arcade, is_anonymous, creator_id, created_at, published_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		g.ID, g.Title, nullString(g.Description), nullString(g.ThumbnailURL), g.PlayURL, g.HostType, g.AspectRatio,
		price, g.Status, g.Arcade, g.IsAnonymous, nullString(g.CreatorID), toMillis(g.CreatedAt), published,
	)
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	return g.ID, nil
}

// AddLike records a like. Liking twice is a no-op.
func (s *Store) AddLike(ctx context.Context, gameID, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO likes (id, game_id, user_id, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT (game_id, user_id) DO NOTHING`),
		uuid.NewString(), gameID, userID, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

// AddComment stores a comment and returns its id
func (s *Store) AddComment(ctx context.Context, gameID, userID, content string) (string, error) {
	id := uuid.NewString()
	now := toMillis(s.now())
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO comments (id, game_id, user_id, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`),
		id, gameID, userID, content, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("add comment: %w", err)
	}
	return id, nil
}

// ListArcadeGames returns approved arcade games, newest first, with like and
// comment counts. Anonymous games carry no creator.
func (s *Store) ListArcadeGames(ctx context.Context) ([]core.ArcadeGame, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT g.id, g.title, g.description, g.thumbnail_url, g.play_url, g.created_at, g.published_at,
    g.host_type, g.aspect_ratio, g.price_usd, g.is_anonymous,
    p.username, p.display_name, p.avatar_url, p.bio, p.website_url,
    (SELECT COUNT(*) FROM likes l WHERE l.game_id = g.id),
    (SELECT COUNT(*) FROM comments c WHERE c.game_id = g.id)
FROM games g
LEFT JOIN profiles p ON p.id = g.creator_id
WHERE g.status = ? AND g.arcade = ?
ORDER BY g.created_at DESC, g.id`), core.GameStatusApproved, true)
	if err != nil {
		return nil, fmt.Errorf("list arcade games: %w", err)
	}
	defer rows.Close()

	games := []core.ArcadeGame{}
	for rows.Next() {
		var (
			g                                  core.ArcadeGame
			description, thumbnail             sql.NullString
			createdAt                          int64
			published                          sql.NullInt64
			price                              decimal.NullDecimal
			anonymous                          bool
			username, display, avatar, bio, ws sql.NullString
		)
		if err := rows.Scan(
			&g.ID, &g.Title, &description, &thumbnail, &g.PlayURL, &createdAt, &published,
			&g.HostType, &g.AspectRatio, &price, &anonymous,
			&username, &display, &avatar, &bio, &ws,
			&g.LikesCount, &g.CommentsCount,
		); err != nil {
			return nil, fmt.Errorf("scan arcade game: %w", err)
		}

		g.Description = description.String
		g.ThumbnailURL = thumbnail.String
		g.CreatedAt = fromMillis(createdAt)
		if published.Valid {
			t := fromMillis(published.Int64)
			g.PublishedAt = &t
		}
		if price.Valid {
			p := price.Decimal
			g.PriceUSD = &p
		}
		if !anonymous && username.Valid {
			g.Creator = &core.Creator{
				Username:    username.String,
				DisplayName: display.String,
				AvatarURL:   avatar.String,
				Bio:         bio.String,
				WebsiteURL:  ws.String,
			}
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list arcade games: %w", err)
	}

	return games, nil
}
