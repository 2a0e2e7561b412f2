package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

type leaderboardInvalidator interface {
	InvalidateLeaderboard(ctx context.Context)
}

type QuickPickInput struct {
	UserID     string
	GameID     string
	TeamID     string
	Confidence int
}

// GamePicks pairs one game with every pick placed on it, for the week grid
// view shown once picks are revealed.
type GamePicks struct {
	Game  game.Game
	Picks []pick.Pick
}

// PickService runs submissions through the week rules and persists accepted
// pick sets atomically.
type PickService struct {
	weekRepo    week.Repository
	gameRepo    game.Repository
	pickRepo    pick.Repository
	invalidator leaderboardInvalidator
	now         func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPickService(weekRepo week.Repository, gameRepo game.Repository, pickRepo pick.Repository) *PickService {
	return &PickService{
		weekRepo: weekRepo,
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *PickService) SetLeaderboardInvalidator(invalidator leaderboardInvalidator) {
	s.invalidator = invalidator
}

// submissionLock serializes submissions per user and week so concurrent
// replaces of the same pick set cannot interleave.
func (s *PickService) submissionLock(userID string, weekNumber int) *sync.Mutex {
	key := fmt.Sprintf("%s::%d", userID, weekNumber)

	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// SubmitWeekPicks validates one user's full submission for a week and, on
// acceptance, replaces the user's picks for that week as a single unit.
// Rejections surface as a *pick.ValidationError and leave storage untouched.
func (s *PickService) SubmitWeekPicks(ctx context.Context, userID string, weekNumber int, entries []pick.Entry) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitWeekPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if weekNumber < 1 {
		return nil, fmt.Errorf("%w: week number must be positive", ErrInvalidInput)
	}

	if _, exists, err := s.weekRepo.GetByNumber(ctx, weekNumber); err != nil {
		return nil, fmt.Errorf("get week %d: %w", weekNumber, err)
	} else if !exists {
		return nil, fmt.Errorf("%w: week %d", ErrNotFound, weekNumber)
	}

	games, err := s.gameRepo.ListByWeek(ctx, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("list games for week %d: %w", weekNumber, err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: week %d has no games", ErrNotFound, weekNumber)
	}

	lock := s.submissionLock(userID, weekNumber)
	lock.Lock()
	defer lock.Unlock()

	picks, err := pick.ValidateWeekSubmission(games, entries)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}
	for i := range picks {
		picks[i].UserID = userID
		picks[i].CreatedAt = now
	}

	if err := s.pickRepo.ReplaceForGames(ctx, userID, gameIDs, picks); err != nil {
		return nil, fmt.Errorf("replace picks for week %d: %w", weekNumber, err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateLeaderboard(ctx)
	}

	return picks, nil
}

// QuickPick places or updates a single pick without redoing the whole week.
// It is only allowed while the game is still scheduled; the confidence value
// must be positive but is not checked against the week's 1..N set here.
func (s *PickService) QuickPick(ctx context.Context, input QuickPickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.QuickPick")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.GameID = strings.TrimSpace(input.GameID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	if input.UserID == "" {
		return pick.Pick{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.GameID == "" {
		return pick.Pick{}, fmt.Errorf("%w: game_id is required", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get game %s: %w", input.GameID, err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: game %s", ErrNotFound, input.GameID)
	}

	var violations []pick.Violation
	if g.Status != game.StatusScheduled {
		violations = append(violations, pick.Violation{
			Kind:    pick.ViolationGameLocked,
			GameIDs: []string{g.ID},
		})
	}
	if !g.HasTeam(input.TeamID) {
		violations = append(violations, pick.Violation{
			Kind:    pick.ViolationInvalidTeam,
			GameIDs: []string{g.ID},
		})
	}
	if input.Confidence < 1 {
		violations = append(violations, pick.Violation{
			Kind:   pick.ViolationConfidenceRange,
			Values: []int{input.Confidence},
		})
	}
	if len(violations) > 0 {
		return pick.Pick{}, &pick.ValidationError{Violations: violations}
	}

	lock := s.submissionLock(input.UserID, g.WeekNumber)
	lock.Lock()
	defer lock.Unlock()

	p := pick.Pick{
		UserID:     input.UserID,
		GameID:     input.GameID,
		TeamID:     input.TeamID,
		Confidence: input.Confidence,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.pickRepo.Upsert(ctx, p); err != nil {
		return pick.Pick{}, fmt.Errorf("upsert pick for game %s: %w", input.GameID, err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateLeaderboard(ctx)
	}

	return p, nil
}

// GameDetail returns one game together with the caller's pick on it. The
// pick is nil when the user has not picked that game yet.
func (s *PickService) GameDetail(ctx context.Context, userID, gameID string) (game.Game, *pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GameDetail")
	defer span.End()

	userID = strings.TrimSpace(userID)
	gameID = strings.TrimSpace(gameID)
	if userID == "" {
		return game.Game{}, nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if gameID == "" {
		return game.Game{}, nil, fmt.Errorf("%w: game_id is required", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("get game %s: %w", gameID, err)
	}
	if !exists {
		return game.Game{}, nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	p, found, err := s.pickRepo.GetByUserAndGame(ctx, userID, gameID)
	if err != nil {
		return game.Game{}, nil, fmt.Errorf("get pick for game %s: %w", gameID, err)
	}
	if !found {
		return g, nil, nil
	}

	return g, &p, nil
}

// ListUserWeekPicks returns one user's picks for the given week.
func (s *PickService) ListUserWeekPicks(ctx context.Context, userID string, weekNumber int) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListUserWeekPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	games, err := s.gameRepo.ListByWeek(ctx, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("list games for week %d: %w", weekNumber, err)
	}
	inWeek := make(map[string]bool, len(games))
	for _, g := range games {
		inWeek[g.ID] = true
	}

	all, err := s.pickRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list picks for user %s: %w", userID, err)
	}

	picks := make([]pick.Pick, 0, len(games))
	for _, p := range all {
		if inWeek[p.GameID] {
			picks = append(picks, p)
		}
	}

	return picks, nil
}

// ListUserPicks returns every pick the user has placed across all weeks.
func (s *PickService) ListUserPicks(ctx context.Context, userID string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListUserPicks")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	picks, err := s.pickRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list picks for user %s: %w", userID, err)
	}

	return picks, nil
}

// ListWeekPicks returns every pick placed on the week's games, grouped per
// game in kickoff order.
func (s *PickService) ListWeekPicks(ctx context.Context, weekNumber int) ([]GamePicks, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListWeekPicks")
	defer span.End()

	if weekNumber < 1 {
		return nil, fmt.Errorf("%w: week number must be positive", ErrInvalidInput)
	}

	games, err := s.gameRepo.ListByWeek(ctx, weekNumber)
	if err != nil {
		return nil, fmt.Errorf("list games for week %d: %w", weekNumber, err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: week %d", ErrNotFound, weekNumber)
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].KickoffAt.Equal(games[j].KickoffAt) {
			return games[i].KickoffAt.Before(games[j].KickoffAt)
		}
		return games[i].ID < games[j].ID
	})

	gameIDs := make([]string, 0, len(games))
	for _, g := range games {
		gameIDs = append(gameIDs, g.ID)
	}
	picks, err := s.pickRepo.ListByGames(ctx, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("list picks for week %d: %w", weekNumber, err)
	}

	byGame := make(map[string][]pick.Pick, len(games))
	for _, p := range picks {
		byGame[p.GameID] = append(byGame[p.GameID], p)
	}

	out := make([]GamePicks, 0, len(games))
	for _, g := range games {
		out = append(out, GamePicks{Game: g, Picks: byGame[g.ID]})
	}

	return out, nil
}
