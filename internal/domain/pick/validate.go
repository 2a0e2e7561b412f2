package pick

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
)

// ViolationKind identifies one way a submission can break the week rules.
type ViolationKind string

const (
	ViolationForeignGame     ViolationKind = "FOREIGN_GAME"
	ViolationIncomplete      ViolationKind = "INCOMPLETE_SUBMISSION"
	ViolationDuplicateGame   ViolationKind = "DUPLICATE_GAME"
	ViolationInvalidTeam     ViolationKind = "INVALID_TEAM_SELECTION"
	ViolationDuplicateConf   ViolationKind = "DUPLICATE_CONFIDENCE"
	ViolationConfidenceRange ViolationKind = "CONFIDENCE_RANGE"
	ViolationGameLocked      ViolationKind = "GAME_LOCKED"
)

// Violation is one rule breach found in a submission. GameIDs carries the
// offending game ids where the rule is per-game, Values carries the
// offending confidence values where it is about the 1..N set.
type Violation struct {
	Kind    ViolationKind
	GameIDs []string
	Values  []int
}

func (v Violation) String() string {
	parts := []string{string(v.Kind)}
	if len(v.GameIDs) > 0 {
		parts = append(parts, "games="+strings.Join(v.GameIDs, ","))
	}
	if len(v.Values) > 0 {
		values := make([]string, 0, len(v.Values))
		for _, value := range v.Values {
			values = append(values, fmt.Sprintf("%d", value))
		}
		parts = append(parts, "values="+strings.Join(values, ","))
	}
	return strings.Join(parts, " ")
}

// ValidationError carries every violation found in one validation pass so a
// caller can fix all problems in one round trip.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "submission rejected"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		parts = append(parts, violation.String())
	}
	return "submission rejected: " + strings.Join(parts, "; ")
}

// ValidateWeekSubmission judges a whole-week submission against the week's
// games as one atomic decision. It is pure and never touches storage.
//
// A submission is accepted only when it covers every game in the week
// exactly once, selects a participant of each game, and uses each
// confidence value 1..N exactly once. On rejection the returned error is a
// *ValidationError listing every breach found, not just the first. A week
// with no games accepts only the empty submission.
func ValidateWeekSubmission(games []game.Game, entries []Entry) ([]Pick, error) {
	gamesByID := make(map[string]game.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}

	var violations []Violation

	var foreign []string
	var duplicated []string
	var badTeams []string
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		g, ok := gamesByID[entry.GameID]
		if !ok {
			foreign = append(foreign, entry.GameID)
			continue
		}
		if seen[entry.GameID] {
			duplicated = append(duplicated, entry.GameID)
			continue
		}
		seen[entry.GameID] = true
		if !g.HasTeam(entry.TeamID) {
			badTeams = append(badTeams, entry.GameID)
		}
	}

	var missing []string
	for _, g := range games {
		if !seen[g.ID] {
			missing = append(missing, g.ID)
		}
	}
	sort.Strings(missing)

	if len(foreign) > 0 {
		violations = append(violations, Violation{Kind: ViolationForeignGame, GameIDs: foreign})
	}
	if len(missing) > 0 {
		violations = append(violations, Violation{Kind: ViolationIncomplete, GameIDs: missing})
	}
	if len(duplicated) > 0 {
		violations = append(violations, Violation{Kind: ViolationDuplicateGame, GameIDs: duplicated})
	}
	if len(badTeams) > 0 {
		violations = append(violations, Violation{Kind: ViolationInvalidTeam, GameIDs: badTeams})
	}

	// Confidence values across the submission must be exactly {1..N}.
	// Duplicates and out-of-range values are two views of the same
	// invariant and are reported together when both occur.
	n := len(games)
	counts := make(map[int]int, len(entries))
	var outOfRange []int
	for _, entry := range entries {
		if entry.Confidence < 1 || entry.Confidence > n {
			outOfRange = append(outOfRange, entry.Confidence)
			continue
		}
		counts[entry.Confidence]++
	}
	var repeated []int
	for value, count := range counts {
		if count > 1 {
			repeated = append(repeated, value)
		}
	}
	sort.Ints(repeated)
	if len(repeated) > 0 {
		violations = append(violations, Violation{Kind: ViolationDuplicateConf, Values: repeated})
	}
	if len(outOfRange) > 0 {
		violations = append(violations, Violation{Kind: ViolationConfidenceRange, Values: outOfRange})
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	picks := make([]Pick, 0, len(entries))
	for _, entry := range entries {
		picks = append(picks, Pick{
			GameID:     entry.GameID,
			TeamID:     entry.TeamID,
			Confidence: entry.Confidence,
		})
	}

	return picks, nil
}
