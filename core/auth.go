package core

import (
	"strings"
	"time"
)

// DefaultWalletDomain is the host part of the placeholder email assigned to
// wallet-only accounts.
const DefaultWalletDomain = "metamask.local"

// WalletLogin is a signed login attempt submitted by a client. The message
// and signature are produced by the wallet extension and used once.
type WalletLogin struct {
	WalletAddress string
	Message       string
	Signature     string
}

// WalletIdentity links a normalized wallet address to its backend user.
type WalletIdentity struct {
	WalletAddress string
	UserID        string
	Email         string
}

// UserMetadata is stored with the auth user and copied onto its profile.
type UserMetadata struct {
	WalletAddress string `json:"wallet_address,omitempty"`
	Username      string `json:"username,omitempty"`
}

// User is a backend auth user
type User struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	EmailConfirmed bool         `json:"email_confirmed"`
	Metadata       UserMetadata `json:"user_metadata"`
	CreatedAt      time.Time    `json:"created_at"`
}

// NewUser describes an auth user to be created
type NewUser struct {
	Email        string
	Password     string
	EmailConfirm bool
	Metadata     UserMetadata
}

// Profile is the public record social and content data hangs off.
type Profile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name,omitempty"`
	WalletAddress string    `json:"wallet_address,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	WebsiteURL    string    `json:"website_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Session is a pair of backend tokens plus the user they belong to.
type Session struct {
	ID            string    `json:"-"`
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token"`
	TokenType     string    `json:"token_type"`
	ExpiresIn     int64     `json:"expires_in"`
	ExpiresAt     int64     `json:"expires_at"`
	User          *User     `json:"user,omitempty"`
	IssuedAt      time.Time `json:"-"`
	AccessExpiry  time.Time `json:"-"`
	RefreshExpiry time.Time `json:"-"`
	RefreshID     string    `json:"-"`
}

// Claims is what a parsed session token carries
type Claims struct {
	ID            string
	UserID        string
	WalletAddress string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	RefreshID     string
}

// NormalizeAddress lower-cases a wallet address so case variants of the same
// address map to one identity.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// WalletEmail returns the placeholder email for a wallet address.
func WalletEmail(address, domain string) string {
	if domain == "" {
		domain = DefaultWalletDomain
	}
	return NormalizeAddress(address) + "@" + domain
}

// ShortAddress renders 0x1234...abcd style display names.
func ShortAddress(address string) string {
	if len(address) < 42 {
		return address
	}
	return address[:6] + "..." + address[38:]
}
