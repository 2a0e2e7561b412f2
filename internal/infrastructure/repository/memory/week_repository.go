package memory

import (
	"context"
	"sync"

	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

type WeekRepository struct {
	mu    sync.RWMutex
	items map[int]week.Week
}

func NewWeekRepository(weeks []week.Week) *WeekRepository {
	items := make(map[int]week.Week, len(weeks))
	for _, item := range weeks {
		items[item.Number] = item
	}

	return &WeekRepository{items: items}
}

func (r *WeekRepository) List(_ context.Context) ([]week.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]week.Week, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}

	return out, nil
}

func (r *WeekRepository) GetByNumber(_ context.Context, number int) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[number]
	if !ok {
		return week.Week{}, false, nil
	}

	return item, true, nil
}

func (r *WeekRepository) UpsertWeeks(_ context.Context, items []week.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if item.Number < 1 {
			continue
		}
		r.items[item.Number] = item
	}

	return nil
}
