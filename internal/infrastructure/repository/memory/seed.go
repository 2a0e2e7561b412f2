package memory

import (
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

// Seed data backs local development without a database or feed key. One
// finished week and one upcoming week give the pick and scoring paths
// something to chew on.

func SeedTeams() []team.Team {
	codes := []string{"KC", "BUF", "PHI", "DAL", "SF", "SEA", "GB", "CHI"}
	teams := make([]team.Team, 0, len(codes))
	for _, code := range codes {
		teams = append(teams, team.Team{
			ID:   "team-" + code,
			Code: code,
			Name: team.CanonicalName(code),
		})
	}
	return teams
}

func SeedWeeks() []week.Week {
	return []week.Week{{Number: 1}, {Number: 2}}
}

func SeedGames() []game.Game {
	intPtr := func(v int) *int { return &v }
	kickoffWeek1 := time.Date(2025, time.September, 7, 17, 0, 0, 0, time.UTC)
	kickoffWeek2 := time.Date(2025, time.September, 14, 17, 0, 0, 0, time.UTC)

	return []game.Game{
		{
			ID:         "game-w1-kc-buf",
			ExternalID: "202501KCBUF",
			WeekNumber: 1,
			HomeTeamID: "team-KC",
			AwayTeamID: "team-BUF",
			KickoffAt:  kickoffWeek1,
			HomeScore:  intPtr(27),
			AwayScore:  intPtr(20),
			Status:     game.StatusFinal,
			Closed:     true,
		},
		{
			ID:         "game-w1-phi-dal",
			ExternalID: "202501PHIDAL",
			WeekNumber: 1,
			HomeTeamID: "team-PHI",
			AwayTeamID: "team-DAL",
			KickoffAt:  kickoffWeek1.Add(3 * time.Hour),
			HomeScore:  intPtr(17),
			AwayScore:  intPtr(23),
			Status:     game.StatusFinal,
			Closed:     true,
		},
		{
			ID:         "game-w2-sf-sea",
			ExternalID: "202502SFSEA",
			WeekNumber: 2,
			HomeTeamID: "team-SF",
			AwayTeamID: "team-SEA",
			KickoffAt:  kickoffWeek2,
			Status:     game.StatusScheduled,
		},
		{
			ID:         "game-w2-gb-chi",
			ExternalID: "202502GBCHI",
			WeekNumber: 2,
			HomeTeamID: "team-GB",
			AwayTeamID: "team-CHI",
			KickoffAt:  kickoffWeek2.Add(3 * time.Hour),
			Status:     game.StatusScheduled,
		},
	}
}
