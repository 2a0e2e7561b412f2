package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/repository/memory"
	"github.com/ngreenfield/football-pickem/internal/platform/cache"
)

func scorePtr(v int) *int { return &v }

func finishedGame(id string, home, away int) game.Game {
	return game.Game{
		ID:         id,
		ExternalID: "ext-" + id,
		WeekNumber: 1,
		HomeTeamID: "team-HOME",
		AwayTeamID: "team-AWAY",
		HomeScore:  scorePtr(home),
		AwayScore:  scorePtr(away),
		Status:     game.StatusFinal,
		Closed:     true,
	}
}

func TestScorePick(t *testing.T) {
	t.Parallel()

	g := finishedGame("game-1", 24, 17)

	correct := ScorePick(pick.Pick{GameID: "game-1", TeamID: "team-HOME", Confidence: 5}, g)
	if !correct.Finished || !correct.Correct || correct.PointsEarned != 5 {
		t.Fatalf("correct pick on finished game: %+v", correct)
	}

	wrong := ScorePick(pick.Pick{GameID: "game-1", TeamID: "team-AWAY", Confidence: 5}, g)
	if wrong.Correct || wrong.PointsEarned != 0 {
		t.Fatalf("wrong pick must earn nothing: %+v", wrong)
	}

	// Final but not closed: the winner is known, the points are not banked.
	open := g
	open.Closed = false
	pending := ScorePick(pick.Pick{GameID: "game-1", TeamID: "team-HOME", Confidence: 5}, open)
	if pending.Finished || !pending.Correct || pending.PointsEarned != 0 {
		t.Fatalf("open game must not award points: %+v", pending)
	}

	tied := finishedGame("game-2", 21, 21)
	onTie := ScorePick(pick.Pick{GameID: "game-2", TeamID: "team-HOME", Confidence: 3}, tied)
	if onTie.Correct || onTie.PointsEarned != 0 {
		t.Fatalf("tie must not award points: %+v", onTie)
	}
}

func TestAggregatePicks(t *testing.T) {
	t.Parallel()

	gamesByID := make(map[string]game.Game)
	var picks []pick.Pick

	// Six finished games: four picked correctly, two not.
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("game-win-%d", i)
		gamesByID[id] = finishedGame(id, 28, 10)
		picks = append(picks, pick.Pick{GameID: id, TeamID: "team-HOME", Confidence: i})
	}
	for i := 1; i <= 2; i++ {
		id := fmt.Sprintf("game-loss-%d", i)
		gamesByID[id] = finishedGame(id, 10, 28)
		picks = append(picks, pick.Pick{GameID: id, TeamID: "team-HOME", Confidence: 10 + i})
	}
	// Two scheduled games and two picks on games nobody knows about.
	for i := 1; i <= 2; i++ {
		id := fmt.Sprintf("game-upcoming-%d", i)
		gamesByID[id] = game.Game{ID: id, WeekNumber: 2, HomeTeamID: "team-HOME", AwayTeamID: "team-AWAY", Status: game.StatusScheduled}
		picks = append(picks, pick.Pick{GameID: id, TeamID: "team-HOME", Confidence: 5 + i})
		picks = append(picks, pick.Pick{GameID: fmt.Sprintf("game-gone-%d", i), TeamID: "team-HOME", Confidence: i})
	}

	agg := AggregatePicks("user-amy", picks, gamesByID)
	if agg.TotalPicks != 10 {
		t.Fatalf("expected 10 total picks, got %d", agg.TotalPicks)
	}
	if agg.CompletedGames != 6 {
		t.Fatalf("expected 6 completed games, got %d", agg.CompletedGames)
	}
	if agg.CorrectPicks != 4 {
		t.Fatalf("expected 4 correct picks, got %d", agg.CorrectPicks)
	}
	if agg.TotalPoints != 1+2+3+4 {
		t.Fatalf("expected 10 points, got %d", agg.TotalPoints)
	}
	if agg.WinPercentage != 66.7 {
		t.Fatalf("expected win percentage 66.7, got %v", agg.WinPercentage)
	}

	empty := AggregatePicks("user-new", nil, gamesByID)
	if empty.WinPercentage != 0 || empty.TotalPicks != 0 {
		t.Fatalf("expected zero aggregate for user without picks: %+v", empty)
	}
}

func newSeededScoringService(store *cache.Store) (*ScoringService, *memory.PickRepository) {
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	pickRepo := memory.NewPickRepository()
	return NewScoringService(gameRepo, pickRepo, store), pickRepo
}

func seedPick(t *testing.T, repo *memory.PickRepository, userID, gameID, teamID string, confidence int) {
	t.Helper()
	err := repo.Upsert(t.Context(), pick.Pick{
		UserID:     userID,
		GameID:     gameID,
		TeamID:     teamID,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed pick: %v", err)
	}
}

func TestScoringService_Leaderboard_OrderAndTieBreak(t *testing.T) {
	service, pickRepo := newSeededScoringService(nil)

	// Week 1 finals: KC beat BUF at home, DAL won in Philadelphia.
	seedPick(t, pickRepo, "user-amy", "game-w1-kc-buf", "team-KC", 2)
	seedPick(t, pickRepo, "user-amy", "game-w1-phi-dal", "team-DAL", 1)
	seedPick(t, pickRepo, "user-bob", "game-w1-kc-buf", "team-KC", 1)
	seedPick(t, pickRepo, "user-bob", "game-w1-phi-dal", "team-PHI", 2)
	seedPick(t, pickRepo, "user-dan", "game-w1-kc-buf", "team-KC", 1)

	rows, err := service.Leaderboard(t.Context())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].UserID != "user-amy" || rows[0].TotalPoints != 3 {
		t.Fatalf("unexpected leader: %+v", rows[0])
	}
	// user-bob and user-dan both hold one point; the tie breaks on user id.
	if rows[1].UserID != "user-bob" || rows[2].UserID != "user-dan" {
		t.Fatalf("tie-break out of order: %s before %s", rows[1].UserID, rows[2].UserID)
	}
	if rows[1].TotalPoints != 1 || rows[2].TotalPoints != 1 {
		t.Fatalf("expected 1 point each on the tie: %+v", rows[1:])
	}
	if rows[0].WinPercentage != 100 {
		t.Fatalf("expected 100%% for the leader, got %v", rows[0].WinPercentage)
	}
	if rows[1].WinPercentage != 50 {
		t.Fatalf("expected 50%% for user-bob, got %v", rows[1].WinPercentage)
	}
}

func TestScoringService_Leaderboard_CacheInvalidation(t *testing.T) {
	store := cache.NewStore(time.Minute)
	service, pickRepo := newSeededScoringService(store)

	seedPick(t, pickRepo, "user-amy", "game-w1-kc-buf", "team-KC", 2)

	first, err := service.Leaderboard(t.Context())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 row, got %d", len(first))
	}

	// A new user's picks stay invisible until the cache is invalidated.
	seedPick(t, pickRepo, "user-bob", "game-w1-kc-buf", "team-KC", 1)

	cached, err := service.Leaderboard(t.Context())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected cached leaderboard with 1 row, got %d", len(cached))
	}

	service.InvalidateLeaderboard(t.Context())

	fresh, err := service.Leaderboard(t.Context())
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 rows after invalidation, got %d", len(fresh))
	}
}

func TestScoringService_UserResults_SortedByKickoff(t *testing.T) {
	service, pickRepo := newSeededScoringService(nil)

	seedPick(t, pickRepo, "user-amy", "game-w2-sf-sea", "team-SF", 1)
	seedPick(t, pickRepo, "user-amy", "game-w1-kc-buf", "team-KC", 2)

	results, err := service.UserResults(t.Context(), "user-amy")
	if err != nil {
		t.Fatalf("user results failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Game.ID != "game-w1-kc-buf" {
		t.Fatalf("results out of kickoff order: %s first", results[0].Game.ID)
	}
	if !results[0].Finished || results[0].PointsEarned != 2 {
		t.Fatalf("unexpected finished result: %+v", results[0])
	}
	if results[1].Finished || results[1].PointsEarned != 0 {
		t.Fatalf("upcoming game must be pending: %+v", results[1])
	}
}
