package team

import (
	"fmt"
	"strings"
)

// Team is one of the clubs a game is played between. Code is the short
// abbreviation used by the schedule feed ("KC", "BUF") and is unique.
type Team struct {
	ID   string
	Code string
	Name string
}

// NormalizeCode maps feed abbreviations onto the canonical form.
func NormalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if err := ValidateCode(t.Code); err != nil {
		return err
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

func ValidateCode(code string) error {
	if len(code) < 2 || len(code) > 4 {
		return fmt.Errorf("team code must be 2 to 4 characters, got %q", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("team code must be upper-case letters, got %q", code)
		}
	}

	return nil
}
