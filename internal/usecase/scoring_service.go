package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/platform/cache"
)

const leaderboardCacheKey = "scoring:leaderboard"

const leaderboardMaxWorkers = 8

// PickResult is one pick scored against the current state of its game.
// Nothing here is stored; a later score correction changes the result on
// the next read.
type PickResult struct {
	Pick         pick.Pick
	Game         game.Game
	Correct      bool
	Finished     bool
	PointsEarned int
}

// UserAggregate is one leaderboard row.
type UserAggregate struct {
	UserID         string
	TotalPicks     int
	CompletedGames int
	CorrectPicks   int
	TotalPoints    int
	WinPercentage  float64
}

// ScorePick judges one pick against its game. A pick only earns points once
// the game is finished; a correct pick earns its confidence value.
func ScorePick(p pick.Pick, g game.Game) PickResult {
	result := PickResult{
		Pick:     p,
		Game:     g,
		Finished: g.IsFinished(),
	}

	winner, decided := g.Winner()
	result.Correct = decided && winner == p.TeamID
	if result.Finished && result.Correct {
		result.PointsEarned = p.Confidence
	}

	return result
}

// AggregatePicks folds a user's scored picks into one leaderboard row.
// Picks on games missing from gamesByID are counted as pending.
func AggregatePicks(userID string, picks []pick.Pick, gamesByID map[string]game.Game) UserAggregate {
	agg := UserAggregate{
		UserID:     userID,
		TotalPicks: len(picks),
	}

	for _, p := range picks {
		g, ok := gamesByID[p.GameID]
		if !ok {
			continue
		}
		result := ScorePick(p, g)
		if !result.Finished {
			continue
		}
		agg.CompletedGames++
		if result.Correct {
			agg.CorrectPicks++
			agg.TotalPoints += result.PointsEarned
		}
	}

	if agg.CompletedGames > 0 {
		pct := float64(agg.CorrectPicks) / float64(agg.CompletedGames) * 100
		agg.WinPercentage = math.Round(pct*10) / 10
	}

	return agg
}

// ScoringService derives per-pick results and leaderboard standings from
// current game state.
type ScoringService struct {
	gameRepo game.Repository
	pickRepo pick.Repository
	cache    *cache.Store
}

func NewScoringService(gameRepo game.Repository, pickRepo pick.Repository, store *cache.Store) *ScoringService {
	return &ScoringService{
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		cache:    store,
	}
}

// UserResults scores every pick the user has placed, in kickoff order.
func (s *ScoringService) UserResults(ctx context.Context, userID string) ([]PickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.UserResults")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list picks for user %s: %w", userID, err)
	}

	gamesByID, err := s.loadGames(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]PickResult, 0, len(picks))
	for _, p := range picks {
		g, ok := gamesByID[p.GameID]
		if !ok {
			continue
		}
		results = append(results, ScorePick(p, g))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Game.KickoffAt.Before(results[j].Game.KickoffAt)
	})

	return results, nil
}

// Aggregate builds one user's leaderboard row.
func (s *ScoringService) Aggregate(ctx context.Context, userID string) (UserAggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Aggregate")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserAggregate{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByUser(ctx, userID)
	if err != nil {
		return UserAggregate{}, fmt.Errorf("list picks for user %s: %w", userID, err)
	}
	gamesByID, err := s.loadGames(ctx)
	if err != nil {
		return UserAggregate{}, err
	}

	return AggregatePicks(userID, picks, gamesByID), nil
}

// Leaderboard aggregates every user who has placed a pick, ordered by total
// points descending. Ties break on user ID ascending so the order is stable
// across reads.
func (s *ScoringService) Leaderboard(ctx context.Context) ([]UserAggregate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard")
	defer span.End()

	if s.cache == nil {
		return s.buildLeaderboard(ctx)
	}

	value, err := s.cache.GetOrLoad(ctx, leaderboardCacheKey, func(ctx context.Context) (any, error) {
		return s.buildLeaderboard(ctx)
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]UserAggregate)
	if !ok {
		return s.buildLeaderboard(ctx)
	}
	return rows, nil
}

func (s *ScoringService) InvalidateLeaderboard(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, leaderboardCacheKey)
	}
}

func (s *ScoringService) buildLeaderboard(ctx context.Context) ([]UserAggregate, error) {
	userIDs, err := s.pickRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pick user ids: %w", err)
	}
	if len(userIDs) == 0 {
		return []UserAggregate{}, nil
	}

	gamesByID, err := s.loadGames(ctx)
	if err != nil {
		return nil, err
	}

	workers := pool.NewWithResults[UserAggregate]().
		WithContext(ctx).
		WithMaxGoroutines(leaderboardMaxWorkers)
	for _, userID := range userIDs {
		userID := userID
		workers.Go(func(ctx context.Context) (UserAggregate, error) {
			picks, err := s.pickRepo.ListByUser(ctx, userID)
			if err != nil {
				return UserAggregate{}, fmt.Errorf("list picks for user %s: %w", userID, err)
			}
			return AggregatePicks(userID, picks, gamesByID), nil
		})
	}
	rows, err := workers.Wait()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].UserID < rows[j].UserID
	})

	return rows, nil
}

func (s *ScoringService) loadGames(ctx context.Context) (map[string]game.Game, error) {
	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	byID := make(map[string]game.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return byID, nil
}
