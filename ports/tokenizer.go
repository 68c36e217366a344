package ports

import "github.com/vibearcade/arcade/core"

// Tokenizer converts between sessions and signed tokens
type Tokenizer interface {
	SessionToAccessToken(session *core.Session, user *core.User) (string, error)
	AccessTokenToClaims(token string) (*core.Claims, error)
	SessionToRefreshToken(session *core.Session, user *core.User) (string, error)
	RefreshTokenToClaims(token string) (*core.Claims, error)
}
