package service

import (
	"context"
	"log"

	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/ports"
)

// ArcadeService serves the public arcade catalogue
type ArcadeService struct {
	games  ports.GameStore
	logger *log.Logger
}

// NewArcadeService creates a new arcade service
func NewArcadeService(games ports.GameStore, logger *log.Logger) *ArcadeService {
	if logger == nil {
		logger = log.Default()
	}
	return &ArcadeService{games: games, logger: logger}
}

// ListGames returns approved arcade games, newest first
func (s *ArcadeService) ListGames(ctx context.Context) ([]core.ArcadeGame, error) {
	games, err := s.games.ListArcadeGames(ctx)
	if err != nil {
		s.logger.Printf("Error fetching arcade games: %v", err)
		return nil, err
	}
	s.logger.Printf("Fetched %d arcade games", len(games))
	return games, nil
}
