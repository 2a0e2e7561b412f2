package memory

import (
	"reflect"
	"testing"
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/pick"
)

func newPick(userID, gameID, teamID string, confidence int) pick.Pick {
	return pick.Pick{
		UserID:     userID,
		GameID:     gameID,
		TeamID:     teamID,
		Confidence: confidence,
		CreatedAt:  time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPickRepositoryUpsertAndGet(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	ctx := t.Context()

	if err := repo.Upsert(ctx, newPick("user-amy", "game-1", "team-KC", 3)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	stored, found, err := repo.GetByUserAndGame(ctx, "user-amy", "game-1")
	if err != nil || !found {
		t.Fatalf("expected pick, found=%v err=%v", found, err)
	}
	if stored.TeamID != "team-KC" || stored.Confidence != 3 {
		t.Fatalf("unexpected pick: %+v", stored)
	}

	// Upsert on the same user and game overwrites in place.
	if err := repo.Upsert(ctx, newPick("user-amy", "game-1", "team-BUF", 1)); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	stored, _, _ = repo.GetByUserAndGame(ctx, "user-amy", "game-1")
	if stored.TeamID != "team-BUF" || stored.Confidence != 1 {
		t.Fatalf("upsert did not overwrite: %+v", stored)
	}

	if _, found, _ := repo.GetByUserAndGame(ctx, "user-bob", "game-1"); found {
		t.Fatal("expected no pick for another user")
	}
}

func TestPickRepositoryReplaceForGames(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	ctx := t.Context()

	weekGames := []string{"game-1", "game-2", "game-3"}
	if err := repo.ReplaceForGames(ctx, "user-amy", weekGames, []pick.Pick{
		newPick("user-amy", "game-1", "team-KC", 3),
		newPick("user-amy", "game-2", "team-PHI", 2),
		newPick("user-amy", "game-3", "team-SF", 1),
	}); err != nil {
		t.Fatalf("first replace failed: %v", err)
	}

	// Another user's picks on the same games stay untouched.
	if err := repo.Upsert(ctx, newPick("user-bob", "game-1", "team-BUF", 1)); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Replacing with a smaller set clears picks the new set no longer covers.
	if err := repo.ReplaceForGames(ctx, "user-amy", weekGames, []pick.Pick{
		newPick("user-amy", "game-1", "team-BUF", 2),
		newPick("user-amy", "game-2", "team-DAL", 1),
	}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	mine, err := repo.ListByUser(ctx, "user-amy")
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 picks after replace, got %d", len(mine))
	}
	if mine[0].GameID != "game-1" || mine[0].TeamID != "team-BUF" {
		t.Fatalf("unexpected first pick: %+v", mine[0])
	}
	if mine[1].GameID != "game-2" || mine[1].TeamID != "team-DAL" {
		t.Fatalf("unexpected second pick: %+v", mine[1])
	}

	theirs, err := repo.ListByUser(ctx, "user-bob")
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if len(theirs) != 1 || theirs[0].TeamID != "team-BUF" {
		t.Fatalf("other user's picks changed: %+v", theirs)
	}
}

func TestPickRepositoryListByGamesOrdering(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	ctx := t.Context()

	for _, item := range []pick.Pick{
		newPick("user-bob", "game-2", "team-DAL", 1),
		newPick("user-amy", "game-2", "team-PHI", 2),
		newPick("user-amy", "game-1", "team-KC", 3),
		newPick("user-amy", "game-9", "team-SF", 1),
	} {
		if err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	picks, err := repo.ListByGames(ctx, []string{"game-1", "game-2"})
	if err != nil {
		t.Fatalf("list by games failed: %v", err)
	}

	var got [][2]string
	for _, item := range picks {
		got = append(got, [2]string{item.GameID, item.UserID})
	}
	want := [][2]string{
		{"game-1", "user-amy"},
		{"game-2", "user-amy"},
		{"game-2", "user-bob"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected ordering: %v", got)
	}
}

func TestPickRepositoryListUserIDs(t *testing.T) {
	t.Parallel()

	repo := NewPickRepository()
	ctx := t.Context()

	for _, item := range []pick.Pick{
		newPick("user-dan", "game-1", "team-KC", 1),
		newPick("user-amy", "game-1", "team-BUF", 1),
		newPick("user-amy", "game-2", "team-PHI", 2),
		newPick("user-bob", "game-2", "team-DAL", 1),
	} {
		if err := repo.Upsert(ctx, item); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	userIDs, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list user ids failed: %v", err)
	}
	if !reflect.DeepEqual(userIDs, []string{"user-amy", "user-bob", "user-dan"}) {
		t.Fatalf("expected sorted deduplicated ids, got %v", userIDs)
	}
}
