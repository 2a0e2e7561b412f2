package pick

import "time"

// Pick is one user's call on one game: the team they expect to win and the
// confidence points they staked on it. Within a week a user's confidence
// values form a permutation of 1..N where N is the number of games.
type Pick struct {
	UserID     string
	GameID     string
	TeamID     string
	Confidence int
	CreatedAt  time.Time
}

// Entry is the submission form of a pick, before ownership and timestamps
// are stamped on.
type Entry struct {
	GameID     string
	TeamID     string
	Confidence int
}
