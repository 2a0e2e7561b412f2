package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
)

const (
	gameSelect = `
		SELECT id, external_id, week_number, home_team_id, away_team_id,
		       kickoff_at, home_score, away_score, status, closed
		FROM games`

	gameUpsert = `
		INSERT INTO games (
			id, external_id, week_number, home_team_id, away_team_id,
			kickoff_at, home_score, away_score, status, closed
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_id) DO UPDATE SET
			week_number = EXCLUDED.week_number,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			kickoff_at = EXCLUDED.kickoff_at,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			closed = EXCLUDED.closed`
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, gameSelect+` ORDER BY kickoff_at, id`); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	return gamesFromRows(rows), nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekNumber int) ([]game.Game, error) {
	var rows []gameRow
	if err := r.db.SelectContext(ctx, &rows, gameSelect+` WHERE week_number = $1 ORDER BY kickoff_at, id`, weekNumber); err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}

	return gamesFromRows(rows), nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	var row gameRow
	if err := r.db.GetContext(ctx, &row, gameSelect+` WHERE id = $1`, gameID); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	return gameFromRow(row), true, nil
}

func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (game.Game, bool, error) {
	var row gameRow
	if err := r.db.GetContext(ctx, &row, gameSelect+` WHERE external_id = $1`, externalID); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by external id: %w", err)
	}

	return gameFromRow(row), true, nil
}

func (r *GameRepository) UpsertGames(ctx context.Context, items []game.Game) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert games tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, gameUpsert,
			item.ID,
			item.ExternalID,
			item.WeekNumber,
			item.HomeTeamID,
			item.AwayTeamID,
			item.KickoffAt,
			item.HomeScore,
			item.AwayScore,
			item.Status,
			item.Closed,
		); err != nil {
			return fmt.Errorf("upsert game external_id=%s: %w", item.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert games tx: %w", err)
	}
	return nil
}

func gamesFromRows(rows []gameRow) []game.Game {
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out
}
