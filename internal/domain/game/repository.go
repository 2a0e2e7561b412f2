package game

import "context"

// Repository exposes game read and ingestion operations.
type Repository interface {
	List(ctx context.Context) ([]Game, error)
	ListByWeek(ctx context.Context, weekNumber int) ([]Game, error)
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Game, bool, error)
	UpsertGames(ctx context.Context, games []Game) error
}
