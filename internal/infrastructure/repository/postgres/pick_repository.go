package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ngreenfield/football-pickem/internal/domain/pick"
)

const (
	pickSelect = `SELECT user_id, game_id, team_id, confidence, created_at FROM picks`

	pickInsert = `
		INSERT INTO picks (user_id, game_id, team_id, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	pickUpsert = pickInsert + `
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			confidence = EXCLUDED.confidence,
			created_at = EXCLUDED.created_at`

	pickDeleteForGames = `DELETE FROM picks WHERE user_id = $1 AND game_id = ANY($2)`
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByUserAndGame(ctx context.Context, userID, gameID string) (pick.Pick, bool, error) {
	var row pickRow
	if err := r.db.GetContext(ctx, &row, pickSelect+` WHERE user_id = $1 AND game_id = $2`, userID, gameID); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick by user and game: %w", err)
	}

	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByUser(ctx context.Context, userID string) ([]pick.Pick, error) {
	var rows []pickRow
	if err := r.db.SelectContext(ctx, &rows, pickSelect+` WHERE user_id = $1 ORDER BY game_id`, userID); err != nil {
		return nil, fmt.Errorf("list picks by user: %w", err)
	}

	return picksFromRows(rows), nil
}

func (r *PickRepository) ListByGames(ctx context.Context, gameIDs []string) ([]pick.Pick, error) {
	if len(gameIDs) == 0 {
		return []pick.Pick{}, nil
	}

	var rows []pickRow
	if err := r.db.SelectContext(ctx, &rows, pickSelect+` WHERE game_id = ANY($1) ORDER BY game_id, user_id`, pq.Array(gameIDs)); err != nil {
		return nil, fmt.Errorf("list picks by games: %w", err)
	}

	return picksFromRows(rows), nil
}

func (r *PickRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT user_id FROM picks ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list pick user ids: %w", err)
	}

	return out, nil
}

// ReplaceForGames deletes the user's picks on the given games and inserts
// the new set inside one transaction, so a failure anywhere leaves the
// prior set intact.
func (r *PickRepository) ReplaceForGames(ctx context.Context, userID string, gameIDs []string, picks []pick.Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace picks tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if len(gameIDs) > 0 {
		if _, err := tx.ExecContext(ctx, pickDeleteForGames, userID, pq.Array(gameIDs)); err != nil {
			return fmt.Errorf("delete picks for replace: %w", err)
		}
	}

	for _, item := range picks {
		if _, err := tx.ExecContext(ctx, pickInsert,
			item.UserID,
			item.GameID,
			item.TeamID,
			item.Confidence,
			item.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert pick game_id=%s: duplicate pick: %w", item.GameID, err)
			}
			return fmt.Errorf("insert pick game_id=%s: %w", item.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace picks tx: %w", err)
	}
	return nil
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	if _, err := r.db.ExecContext(ctx, pickUpsert,
		item.UserID,
		item.GameID,
		item.TeamID,
		item.Confidence,
		item.CreatedAt,
	); err != nil {
		return fmt.Errorf("upsert pick game_id=%s: %w", item.GameID, err)
	}

	return nil
}

func picksFromRows(rows []pickRow) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out
}
