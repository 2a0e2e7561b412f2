package pick

import "context"

// Repository describes pick persistence needs from use cases.
type Repository interface {
	GetByUserAndGame(ctx context.Context, userID, gameID string) (Pick, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Pick, error)
	ListByGames(ctx context.Context, gameIDs []string) ([]Pick, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	// ReplaceForGames swaps the user's picks for the given games in one
	// atomic step. Existing picks on those games are removed first.
	ReplaceForGames(ctx context.Context, userID string, gameIDs []string, picks []Pick) error
	Upsert(ctx context.Context, p Pick) error
}
