package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
	"golang.org/x/sync/errgroup"
)

// countConcurrency bounds the parallel count requests of one listing.
const countConcurrency = 8

type profileJSON struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	WalletAddress string    `json:"wallet_address"`
	AvatarURL     string    `json:"avatar_url"`
	Bio           string    `json:"bio"`
	WebsiteURL    string    `json:"website_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FindProfileByWallet looks the profile up by exact wallet_address match
func (c *Client) FindProfileByWallet(ctx context.Context, walletAddress string) (*core.Profile, error) {
	path := "/rest/v1/profiles?select=*&limit=1&wallet_address=" + eq(walletAddress)

	var rows []profileJSON
	if _, err := c.do(ctx, "find profile", http.MethodGet, path, nil, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, core.ErrNotFound
	}

	p := rows[0]
	return &core.Profile{
		ID:            p.ID,
		Username:      p.Username,
		DisplayName:   p.DisplayName,
		WalletAddress: p.WalletAddress,
		AvatarURL:     p.AvatarURL,
		Bio:           p.Bio,
		WebsiteURL:    p.WebsiteURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

type gameJSON struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ThumbnailURL string           `json:"thumbnail_url"`
	PlayURL      string           `json:"play_url"`
	CreatedAt    time.Time        `json:"created_at"`
	PublishedAt  *time.Time       `json:"published_at"`
	HostType     string           `json:"host_type"`
	AspectRatio  string           `json:"aspect_ratio"`
	PriceUSD     *decimal.Decimal `json:"price_usd"`
	IsAnonymous  bool             `json:"is_anonymous"`
	Profiles     *core.Creator    `json:"profiles"`
}

const arcadeSelect = "id,title,description,thumbnail_url,play_url,created_at,published_at,host_type," +
	"aspect_ratio,price_usd,arcade,creator_id,is_anonymous," +
	"profiles:creator_id(username,display_name,avatar_url,bio,website_url)"

// ListArcadeGames returns approved arcade games, newest first, with their
// like and comment counts.
func (c *Client) ListArcadeGames(ctx context.Context) ([]core.ArcadeGame, error) {
	q := url.Values{}
	q.Set("select", arcadeSelect)
	q.Set("status", "eq."+core.GameStatusApproved)
	q.Set("arcade", "eq.true")
	q.Set("order", "created_at.desc")

	var rows []gameJSON
	if _, err := c.do(ctx, "list games", http.MethodGet, "/rest/v1/games?"+q.Encode(), nil, nil, &rows); err != nil {
		return nil, err
	}

	games := make([]core.ArcadeGame, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for i, row := range rows {
		games[i] = core.ArcadeGame{
			ID:           row.ID,
			Title:        row.Title,
			Description:  row.Description,
			ThumbnailURL: row.ThumbnailURL,
			PlayURL:      row.PlayURL,
			CreatedAt:    row.CreatedAt,
			PublishedAt:  row.PublishedAt,
			HostType:     row.HostType,
			AspectRatio:  row.AspectRatio,
			PriceUSD:     row.PriceUSD,
		}
		if !row.IsAnonymous {
			games[i].Creator = row.Profiles
		}

		game := &games[i]
		g.Go(func() error {
			n, err := c.count(gctx, "likes", game.ID)
			game.LikesCount = n
			return err
		})
		g.Go(func() error {
			n, err := c.count(gctx, "comments", game.ID)
			game.CommentsCount = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return games, nil
}

// count returns the exact number of rows in table for gameID using a HEAD
// request and the Content-Range header.
func (c *Client) count(ctx context.Context, table, gameID string) (int64, error) {
	header := http.Header{"Prefer": []string{"count=exact"}}
	path := "/rest/v1/" + table + "?select=id&game_id=" + eq(gameID)

	resp, err := c.do(ctx, "count "+table, http.MethodHead, path, header, nil, nil)
	if err != nil {
		return 0, err
	}
	return parseContentRange(resp.Header.Get("Content-Range"))
}

func parseContentRange(v string) (int64, error) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || i == len(v)-1 {
		return 0, fmt.Errorf("supabase: unexpected content-range %q", v)
	}
	total := v[i+1:]
	if total == "*" {
		return 0, nil
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("supabase: unexpected content-range %q: %w", v, err)
	}
	return n, nil
}

var (
	_ ports.ProfileStore = (*Client)(nil)
	_ ports.GameStore    = (*Client)(nil)
)
