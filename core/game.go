package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game statuses
const (
	GameStatusPending  = "pending"
	GameStatusApproved = "approved"
	GameStatusRejected = "rejected"
)

// Creator is the public part of a game creator's profile
type Creator struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

// Game is a submitted game
type Game struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	PlayURL      string
	HostType     string
	AspectRatio  string
	PriceUSD     *decimal.Decimal
	Status       string
	Arcade       bool
	IsAnonymous  bool
	CreatorID    string
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// ArcadeGame is a listed arcade game with its social counters.
type ArcadeGame struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	ThumbnailURL  string           `json:"thumbnail_url"`
	PlayURL       string           `json:"play_url"`
	CreatedAt     time.Time        `json:"created_at"`
	PublishedAt   *time.Time       `json:"published_at"`
	HostType      string           `json:"host_type"`
	AspectRatio   string           `json:"aspect_ratio"`
	PriceUSD      *decimal.Decimal `json:"price_usd"`
	LikesCount    int64            `json:"likes_count"`
	CommentsCount int64            `json:"comments_count"`
	Creator       *Creator         `json:"creator"`
}
