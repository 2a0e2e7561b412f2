package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ngreenfield/football-pickem/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.Pick)}
}

func (r *PickRepository) GetByUserAndGame(_ context.Context, userID, gameID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickKey(userID, gameID)]
	if !ok {
		return pick.Pick{}, false, nil
	}

	return item, true, nil
}

func (r *PickRepository) ListByUser(_ context.Context, userID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GameID < out[j].GameID
	})

	return out, nil
}

func (r *PickRepository) ListByGames(_ context.Context, gameIDs []string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(gameIDs))
	for _, gameID := range gameIDs {
		wanted[gameID] = true
	}

	out := make([]pick.Pick, 0)
	for _, item := range r.items {
		if wanted[item.GameID] {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		return out[i].UserID < out[j].UserID
	})

	return out, nil
}

func (r *PickRepository) ListUserIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, item := range r.items {
		if seen[item.UserID] {
			continue
		}
		seen[item.UserID] = true
		out = append(out, item.UserID)
	}
	sort.Strings(out)

	return out, nil
}

// ReplaceForGames swaps the user's picks for the given games under one
// write lock, so readers never observe a partially replaced set.
func (r *PickRepository) ReplaceForGames(_ context.Context, userID string, gameIDs []string, picks []pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, gameID := range gameIDs {
		delete(r.items, pickKey(userID, gameID))
	}
	for _, item := range picks {
		r.items[pickKey(item.UserID, item.GameID)] = item
	}

	return nil
}

func (r *PickRepository) Upsert(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[pickKey(item.UserID, item.GameID)] = item
	return nil
}

func pickKey(userID, gameID string) string {
	return userID + "::" + gameID
}
