package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/repository/memory"
)

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateLeaderboard(context.Context) {
	c.calls++
}

func newSeededPickService() (*PickService, *memory.PickRepository, *countingInvalidator) {
	weekRepo := memory.NewWeekRepository(memory.SeedWeeks())
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	pickRepo := memory.NewPickRepository()

	service := NewPickService(weekRepo, gameRepo, pickRepo)
	invalidator := &countingInvalidator{}
	service.SetLeaderboardInvalidator(invalidator)

	return service, pickRepo, invalidator
}

func TestPickService_SubmitWeekPicks_AcceptThenReplace(t *testing.T) {
	service, _, invalidator := newSeededPickService()

	now := time.Date(2025, 9, 12, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	first, err := service.SubmitWeekPicks(t.Context(), "user-amy", 2, []pick.Entry{
		{GameID: "game-w2-sf-sea", TeamID: "team-SF", Confidence: 2},
		{GameID: "game-w2-gb-chi", TeamID: "team-CHI", Confidence: 1},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(first))
	}
	for _, p := range first {
		if p.UserID != "user-amy" {
			t.Fatalf("pick not stamped with user, got %q", p.UserID)
		}
		if !p.CreatedAt.Equal(now) {
			t.Fatalf("pick not stamped with submission time, got %v", p.CreatedAt)
		}
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected 1 leaderboard invalidation, got %d", invalidator.calls)
	}

	// Resubmission swaps the whole set.
	second, err := service.SubmitWeekPicks(t.Context(), "user-amy", 2, []pick.Entry{
		{GameID: "game-w2-sf-sea", TeamID: "team-SEA", Confidence: 1},
		{GameID: "game-w2-gb-chi", TeamID: "team-GB", Confidence: 2},
	})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}

	stored, err := service.ListUserWeekPicks(t.Context(), "user-amy", 2)
	if err != nil {
		t.Fatalf("list week picks failed: %v", err)
	}
	if len(stored) != len(second) {
		t.Fatalf("expected %d stored picks, got %d", len(second), len(stored))
	}
	for _, p := range stored {
		if p.GameID == "game-w2-sf-sea" && p.TeamID != "team-SEA" {
			t.Fatalf("old pick survived the replace: %+v", p)
		}
	}
}

func TestPickService_SubmitWeekPicks_UnknownWeek(t *testing.T) {
	service, _, _ := newSeededPickService()

	_, err := service.SubmitWeekPicks(t.Context(), "user-amy", 19, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPickService_SubmitWeekPicks_RejectionLeavesStorageUntouched(t *testing.T) {
	service, _, invalidator := newSeededPickService()

	_, err := service.SubmitWeekPicks(t.Context(), "user-amy", 2, []pick.Entry{
		{GameID: "game-w2-sf-sea", TeamID: "team-SF", Confidence: 1},
		{GameID: "game-w2-gb-chi", TeamID: "team-GB", Confidence: 1},
	})

	var vErr *pick.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *pick.ValidationError, got %v", err)
	}
	if invalidator.calls != 0 {
		t.Fatalf("rejected submission must not invalidate the leaderboard, got %d calls", invalidator.calls)
	}

	stored, err := service.ListUserWeekPicks(t.Context(), "user-amy", 2)
	if err != nil {
		t.Fatalf("list week picks failed: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("expected no stored picks after rejection, got %d", len(stored))
	}
}

func TestPickService_QuickPick(t *testing.T) {
	service, _, invalidator := newSeededPickService()

	now := time.Date(2025, 9, 12, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	placed, err := service.QuickPick(t.Context(), QuickPickInput{
		UserID:     "user-amy",
		GameID:     "game-w2-sf-sea",
		TeamID:     "team-SEA",
		Confidence: 2,
	})
	if err != nil {
		t.Fatalf("quick pick failed: %v", err)
	}
	if placed.TeamID != "team-SEA" || placed.Confidence != 2 {
		t.Fatalf("unexpected pick: %+v", placed)
	}
	if invalidator.calls != 1 {
		t.Fatalf("expected 1 leaderboard invalidation, got %d", invalidator.calls)
	}

	// A second quick pick on the same game updates in place.
	updated, err := service.QuickPick(t.Context(), QuickPickInput{
		UserID:     "user-amy",
		GameID:     "game-w2-sf-sea",
		TeamID:     "team-SF",
		Confidence: 1,
	})
	if err != nil {
		t.Fatalf("repeat quick pick failed: %v", err)
	}

	stored, err := service.ListUserWeekPicks(t.Context(), "user-amy", 2)
	if err != nil {
		t.Fatalf("list week picks failed: %v", err)
	}
	if len(stored) != 1 || stored[0].TeamID != updated.TeamID {
		t.Fatalf("expected one updated pick, got %+v", stored)
	}
}

func TestPickService_QuickPick_Violations(t *testing.T) {
	service, _, _ := newSeededPickService()

	// Week 1 games are final, so their picks are locked.
	_, err := service.QuickPick(t.Context(), QuickPickInput{
		UserID:     "user-amy",
		GameID:     "game-w1-kc-buf",
		TeamID:     "team-KC",
		Confidence: 1,
	})
	var vErr *pick.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *pick.ValidationError, got %v", err)
	}
	if len(vErr.Violations) != 1 || vErr.Violations[0].Kind != pick.ViolationGameLocked {
		t.Fatalf("expected GAME_LOCKED, got %+v", vErr.Violations)
	}

	// A team outside the matchup and a non-positive confidence are both
	// reported in one pass.
	_, err = service.QuickPick(t.Context(), QuickPickInput{
		UserID:     "user-amy",
		GameID:     "game-w2-sf-sea",
		TeamID:     "team-KC",
		Confidence: 0,
	})
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *pick.ValidationError, got %v", err)
	}
	kinds := map[pick.ViolationKind]bool{}
	for _, violation := range vErr.Violations {
		kinds[violation.Kind] = true
	}
	if !kinds[pick.ViolationInvalidTeam] || !kinds[pick.ViolationConfidenceRange] {
		t.Fatalf("expected INVALID_TEAM_SELECTION and CONFIDENCE_RANGE, got %+v", vErr.Violations)
	}

	_, err = service.QuickPick(t.Context(), QuickPickInput{
		UserID:     "user-amy",
		GameID:     "game-unknown",
		TeamID:     "team-KC",
		Confidence: 1,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown game, got %v", err)
	}
}

func TestPickService_ListWeekPicks_GroupsByGameInKickoffOrder(t *testing.T) {
	service, pickRepo, _ := newSeededPickService()

	picks := []pick.Pick{
		{UserID: "user-amy", GameID: "game-w2-gb-chi", TeamID: "team-GB", Confidence: 1},
		{UserID: "user-bob", GameID: "game-w2-sf-sea", TeamID: "team-SF", Confidence: 2},
	}
	for _, p := range picks {
		if err := pickRepo.Upsert(t.Context(), p); err != nil {
			t.Fatalf("seed pick: %v", err)
		}
	}

	grid, err := service.ListWeekPicks(t.Context(), 2)
	if err != nil {
		t.Fatalf("list week picks failed: %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("expected 2 games, got %d", len(grid))
	}
	if grid[0].Game.ID != "game-w2-sf-sea" || grid[1].Game.ID != "game-w2-gb-chi" {
		t.Fatalf("games out of kickoff order: %s, %s", grid[0].Game.ID, grid[1].Game.ID)
	}
	if len(grid[0].Picks) != 1 || grid[0].Picks[0].UserID != "user-bob" {
		t.Fatalf("unexpected picks on first game: %+v", grid[0].Picks)
	}

	_, err = service.ListWeekPicks(t.Context(), 19)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown week, got %v", err)
	}
}

func TestPickService_GameDetail(t *testing.T) {
	service, pickRepo, _ := newSeededPickService()

	seeded := pick.Pick{
		UserID:     "user-amy",
		GameID:     "game-w2-sf-sea",
		TeamID:     "team-SF",
		Confidence: 2,
		CreatedAt:  time.Date(2025, 9, 12, 9, 0, 0, 0, time.UTC),
	}
	if err := pickRepo.Upsert(t.Context(), seeded); err != nil {
		t.Fatalf("seed pick: %v", err)
	}

	g, p, err := service.GameDetail(t.Context(), "user-amy", "game-w2-sf-sea")
	if err != nil {
		t.Fatalf("game detail failed: %v", err)
	}
	if g.ID != "game-w2-sf-sea" {
		t.Fatalf("unexpected game: %+v", g)
	}
	if p == nil || p.TeamID != "team-SF" || p.Confidence != 2 {
		t.Fatalf("expected the seeded pick, got %+v", p)
	}

	// A user who has not picked the game still sees it, with no pick.
	g, p, err = service.GameDetail(t.Context(), "user-bob", "game-w2-sf-sea")
	if err != nil {
		t.Fatalf("game detail without pick failed: %v", err)
	}
	if g.ID != "game-w2-sf-sea" {
		t.Fatalf("unexpected game: %+v", g)
	}
	if p != nil {
		t.Fatalf("expected no pick, got %+v", p)
	}

	_, _, err = service.GameDetail(t.Context(), "user-amy", "game-unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown game, got %v", err)
	}

	_, _, err = service.GameDetail(t.Context(), "", "game-w2-sf-sea")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank user, got %v", err)
	}
}
