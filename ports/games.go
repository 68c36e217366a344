package ports

import (
	"context"

	"github.com/vibearcade/arcade/core"
)

// GameStore serves the public arcade listing
type GameStore interface {
	// ListArcadeGames returns approved arcade games, newest first.
	ListArcadeGames(ctx context.Context) ([]core.ArcadeGame, error)
}
