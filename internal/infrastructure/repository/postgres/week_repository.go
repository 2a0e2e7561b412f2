package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ngreenfield/football-pickem/internal/domain/week"
)

const (
	weekSelect = `SELECT number FROM weeks`

	weekUpsert = `
		INSERT INTO weeks (number)
		VALUES ($1)
		ON CONFLICT (number) DO NOTHING`
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) List(ctx context.Context) ([]week.Week, error) {
	var rows []weekRow
	if err := r.db.SelectContext(ctx, &rows, weekSelect+` ORDER BY number`); err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekFromRow(row))
	}
	return out, nil
}

func (r *WeekRepository) GetByNumber(ctx context.Context, number int) (week.Week, bool, error) {
	var row weekRow
	if err := r.db.GetContext(ctx, &row, weekSelect+` WHERE number = $1`, number); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week by number: %w", err)
	}

	return weekFromRow(row), true, nil
}

func (r *WeekRepository) UpsertWeeks(ctx context.Context, items []week.Week) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert weeks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, weekUpsert, item.Number); err != nil {
			return fmt.Errorf("upsert week number=%d: %w", item.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert weeks tx: %w", err)
	}
	return nil
}
