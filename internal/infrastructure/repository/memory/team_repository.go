package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/ngreenfield/football-pickem/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		items[item.ID] = item
	}

	return &TeamRepository{items: items}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[teamID]
	if !ok {
		return team.Team{}, false, nil
	}

	return item, true, nil
}

func (r *TeamRepository) GetByCode(_ context.Context, code string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code = team.NormalizeCode(code)
	for _, item := range r.items {
		if item.Code == code {
			return item, true, nil
		}
	}

	return team.Team{}, false, nil
}

func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		r.items[item.ID] = item
	}

	return nil
}
