package postgres

import (
	"time"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

type teamRow struct {
	ID   string `db:"id"`
	Code string `db:"code"`
	Name string `db:"name"`
}

func teamFromRow(row teamRow) team.Team {
	return team.Team{
		ID:   row.ID,
		Code: row.Code,
		Name: row.Name,
	}
}

type weekRow struct {
	Number int `db:"number"`
}

func weekFromRow(row weekRow) week.Week {
	return week.Week{Number: row.Number}
}

type gameRow struct {
	ID         string    `db:"id"`
	ExternalID string    `db:"external_id"`
	WeekNumber int       `db:"week_number"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	Status     string    `db:"status"`
	Closed     bool      `db:"closed"`
}

func gameFromRow(row gameRow) game.Game {
	return game.Game{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		WeekNumber: row.WeekNumber,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		KickoffAt:  row.KickoffAt,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		Status:     row.Status,
		Closed:     row.Closed,
	}
}

type pickRow struct {
	UserID     string    `db:"user_id"`
	GameID     string    `db:"game_id"`
	TeamID     string    `db:"team_id"`
	Confidence int       `db:"confidence"`
	CreatedAt  time.Time `db:"created_at"`
}

func pickFromRow(row pickRow) pick.Pick {
	return pick.Pick{
		UserID:     row.UserID,
		GameID:     row.GameID,
		TeamID:     row.TeamID,
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
	}
}
