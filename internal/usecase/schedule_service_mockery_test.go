package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
	gamemock "github.com/ngreenfield/football-pickem/internal/mocks/domain/game"
	weekmock "github.com/ngreenfield/football-pickem/internal/mocks/domain/week"
)

func TestScheduleService_ListWeekGames_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	weekRepo := weekmock.NewRepository(t)
	gameRepo := gamemock.NewRepository(t)

	service := NewScheduleService(nil, weekRepo, gameRepo)

	kickoff := time.Date(2025, 9, 14, 17, 0, 0, 0, time.UTC)
	games := []game.Game{
		{ID: "game-late", WeekNumber: 2, HomeTeamID: "team-GB", AwayTeamID: "team-CHI", KickoffAt: kickoff.Add(3 * time.Hour), Status: game.StatusScheduled},
		{ID: "game-early", WeekNumber: 2, HomeTeamID: "team-SF", AwayTeamID: "team-SEA", KickoffAt: kickoff, Status: game.StatusScheduled},
	}

	weekRepo.
		On("GetByNumber", mock.Anything, 2).
		Return(week.Week{Number: 2}, true, nil).
		Once()
	gameRepo.
		On("ListByWeek", mock.Anything, 2).
		Return(games, nil).
		Once()

	got, err := service.ListWeekGames(ctx, 2)
	if err != nil {
		t.Fatalf("list week games: %v", err)
	}
	if got.Week.Number != 2 {
		t.Fatalf("unexpected week: %+v", got.Week)
	}
	if len(got.Games) != 2 || got.Games[0].ID != "game-early" {
		t.Fatalf("games not in kickoff order: %+v", got.Games)
	}
}

func TestScheduleService_ListWeekGames_WeekNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	weekRepo := weekmock.NewRepository(t)
	gameRepo := gamemock.NewRepository(t)

	service := NewScheduleService(nil, weekRepo, gameRepo)

	weekRepo.
		On("GetByNumber", mock.Anything, 42).
		Return(week.Week{}, false, nil).
		Once()

	_, err := service.ListWeekGames(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
