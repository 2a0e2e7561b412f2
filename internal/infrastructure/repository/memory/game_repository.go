package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository(games []game.Game) *GameRepository {
	items := make(map[string]game.Game, len(games))
	for _, item := range games {
		items[item.ID] = cloneGame(item)
	}

	return &GameRepository{items: items}
}

func (r *GameRepository) List(_ context.Context) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, cloneGame(item))
	}

	return out, nil
}

func (r *GameRepository) ListByWeek(_ context.Context, weekNumber int) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.items))
	for _, item := range r.items {
		if item.WeekNumber == weekNumber {
			out = append(out, cloneGame(item))
		}
	}

	return out, nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[gameID]
	if !ok {
		return game.Game{}, false, nil
	}

	return cloneGame(item), true, nil
}

func (r *GameRepository) GetByExternalID(_ context.Context, externalID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.ExternalID != "" && item.ExternalID == externalID {
			return cloneGame(item), true, nil
		}
	}

	return game.Game{}, false, nil
}

func (r *GameRepository) UpsertGames(_ context.Context, items []game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		r.items[item.ID] = cloneGame(item)
	}

	return nil
}

func cloneGame(item game.Game) game.Game {
	copied := item
	if item.HomeScore != nil {
		score := *item.HomeScore
		copied.HomeScore = &score
	}
	if item.AwayScore != nil {
		score := *item.AwayScore
		copied.AwayScore = &score
	}
	return copied
}
