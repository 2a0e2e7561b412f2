package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ngreenfield/football-pickem/internal/domain/team"
)

const (
	teamSelect = `SELECT id, code, name FROM teams`

	teamUpsert = `
		INSERT INTO teams (id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, teamSelect+` ORDER BY code`); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	var row teamRow
	if err := r.db.GetContext(ctx, &row, teamSelect+` WHERE id = $1`, teamID); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) GetByCode(ctx context.Context, code string) (team.Team, bool, error) {
	var row teamRow
	if err := r.db.GetContext(ctx, &row, teamSelect+` WHERE code = $1`, team.NormalizeCode(code)); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by code: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) UpsertTeams(ctx context.Context, items []team.Team) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert teams tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, teamUpsert, item.ID, item.Code, item.Name); err != nil {
			return fmt.Errorf("upsert team code=%s: %w", item.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert teams tx: %w", err)
	}
	return nil
}
