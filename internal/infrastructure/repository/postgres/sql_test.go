package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches ErrNoRows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatalf("expected true for sql.ErrNoRows")
		}
	})

	t.Run("matches wrapped ErrNoRows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("query game: %w", sql.ErrNoRows)) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fmt.Errorf("pq: relation picks does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503", Message: "foreign key violation"}
		if isUniqueViolation(err) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(fmt.Errorf("connection reset")) {
			t.Fatalf("expected false for plain error")
		}
	})
}

func TestGameFromRow(t *testing.T) {
	score := 27
	kickoff := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	row := gameRow{
		ID:         "game-w1-kc-buf",
		ExternalID: "202501KCBUF",
		WeekNumber: 1,
		HomeTeamID: "team-KC",
		AwayTeamID: "team-BUF",
		KickoffAt:  kickoff,
		HomeScore:  &score,
		Status:     "FINAL",
		Closed:     true,
	}

	got := gameFromRow(row)
	if got.ID != row.ID || got.ExternalID != row.ExternalID || got.WeekNumber != 1 {
		t.Fatalf("unexpected game: %+v", got)
	}
	if !got.KickoffAt.Equal(kickoff) {
		t.Fatalf("unexpected kickoff: %v", got.KickoffAt)
	}
	if got.HomeScore == nil || *got.HomeScore != 27 || got.AwayScore != nil {
		t.Fatalf("score pointers not carried: %+v", got)
	}
}
