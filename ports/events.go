package ports

import "context"

// WalletLoginEvent is published after a successful wallet login
type WalletLoginEvent struct {
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	NewUser       bool   `json:"new_user"`
}

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishWalletLogin(ctx context.Context, event WalletLoginEvent) error
	PublishLogout(ctx context.Context, userID string, tokenID string) error
}
