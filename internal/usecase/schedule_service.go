package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

// WeekGames pairs one week with its games in kickoff order.
type WeekGames struct {
	Week  week.Week
	Games []game.Game
}

// ScheduleService serves the read side of the schedule: teams, weeks and
// games as last ingested from the score feed.
type ScheduleService struct {
	teamRepo team.Repository
	weekRepo week.Repository
	gameRepo game.Repository
}

func NewScheduleService(teamRepo team.Repository, weekRepo week.Repository, gameRepo game.Repository) *ScheduleService {
	return &ScheduleService{
		teamRepo: teamRepo,
		weekRepo: weekRepo,
		gameRepo: gameRepo,
	}
}

func (s *ScheduleService) ListTeams(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListTeams")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Code < teams[j].Code
	})

	return teams, nil
}

func (s *ScheduleService) ListWeeks(ctx context.Context) ([]week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListWeeks")
	defer span.End()

	weeks, err := s.weekRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Number < weeks[j].Number
	})

	return weeks, nil
}

func (s *ScheduleService) ListWeekGames(ctx context.Context, weekNumber int) (WeekGames, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ListWeekGames")
	defer span.End()

	if weekNumber < 1 {
		return WeekGames{}, fmt.Errorf("%w: week number must be positive", ErrInvalidInput)
	}

	w, exists, err := s.weekRepo.GetByNumber(ctx, weekNumber)
	if err != nil {
		return WeekGames{}, fmt.Errorf("get week %d: %w", weekNumber, err)
	}
	if !exists {
		return WeekGames{}, fmt.Errorf("%w: week %d", ErrNotFound, weekNumber)
	}

	games, err := s.gameRepo.ListByWeek(ctx, weekNumber)
	if err != nil {
		return WeekGames{}, fmt.Errorf("list games for week %d: %w", weekNumber, err)
	}
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].KickoffAt.Equal(games[j].KickoffAt) {
			return games[i].KickoffAt.Before(games[j].KickoffAt)
		}
		return games[i].ID < games[j].ID
	})

	return WeekGames{Week: w, Games: games}, nil
}

func (s *ScheduleService) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GetGame")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game_id is required", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game %s: %w", gameID, err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	return g, nil
}
