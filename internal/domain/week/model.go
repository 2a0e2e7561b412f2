package week

import "fmt"

// Week is one scoring period of the season. Weeks are identified by their
// ordinal number starting at 1.
type Week struct {
	Number int
}

func (w Week) Validate() error {
	if w.Number < 1 {
		return fmt.Errorf("week number must be positive, got %d", w.Number)
	}
	return nil
}
