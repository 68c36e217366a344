package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with access-specific ones
type AccessClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Role          string `json:"role"`
	SessionID     string `json:"session_id"`
	RefreshID     string `json:"rid"` // ID of the refresh token
}

// RefreshClaims carry the wallet next to the standard claims so a refresh
// does not need a user lookup.
type RefreshClaims struct {
	jwt.RegisteredClaims
	WalletAddress string `json:"wallet_address,omitempty"`
}
