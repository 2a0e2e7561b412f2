package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusScheduled  = "SCHEDULED"
	StatusInProgress = "IN_PROGRESS"
	StatusFinal      = "FINAL"
	StatusPostponed  = "POSTPONED"
	StatusCanceled   = "CANCELED"
)

// Game represents one scheduled matchup between two teams in a week.
// Scores stay nil until the feed reports them. Closed mirrors the feed's
// statistics-complete flag and gates final scoring.
type Game struct {
	ID         string
	ExternalID string
	WeekNumber int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	HomeScore  *int
	AwayScore  *int
	Status     string
	Closed     bool
}

// NormalizeStatus maps feed status spellings onto the canonical set.
// Unknown values fall back to SCHEDULED.
func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	switch status {
	case StatusScheduled, "":
		return StatusScheduled
	case StatusInProgress, "INPROGRESS", "IN PROGRESS":
		return StatusInProgress
	case StatusFinal, "F", "F/OT", "FINAL OVERTIME":
		return StatusFinal
	case StatusPostponed:
		return StatusPostponed
	case StatusCanceled, "CANCELLED":
		return StatusCanceled
	default:
		return StatusScheduled
	}
}

// Winner returns the winning team ID. The second return is false while the
// game has no winner, either because scores are missing or because it ended
// tied.
func (g Game) Winner() (string, bool) {
	if g.HomeScore == nil || g.AwayScore == nil {
		return "", false
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return g.HomeTeamID, true
	case *g.AwayScore > *g.HomeScore:
		return g.AwayTeamID, true
	default:
		return "", false
	}
}

// IsFinished reports whether the game counts toward scoring. A game only
// finishes once the feed marks it final and closes the box score.
func (g Game) IsFinished() bool {
	return g.Status == StatusFinal && g.Closed
}

func (g Game) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == g.HomeTeamID || teamID == g.AwayTeamID)
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("game id is required")
	}
	if g.WeekNumber < 1 {
		return fmt.Errorf("game week number must be positive, got %d", g.WeekNumber)
	}
	if g.HomeTeamID == "" || g.AwayTeamID == "" {
		return fmt.Errorf("game requires both team ids")
	}
	if g.HomeTeamID == g.AwayTeamID {
		return fmt.Errorf("game cannot pair team %s with itself", g.HomeTeamID)
	}
	if g.HomeScore != nil && *g.HomeScore < 0 {
		return fmt.Errorf("home score cannot be negative")
	}
	if g.AwayScore != nil && *g.AwayScore < 0 {
		return fmt.Errorf("away score cannot be negative")
	}
	switch g.Status {
	case StatusScheduled, StatusInProgress, StatusFinal, StatusPostponed, StatusCanceled:
	default:
		return fmt.Errorf("unknown game status %q", g.Status)
	}

	return nil
}
