// Package model defines shared data structures.
package model

import "time"

// Config defines quiz settings.
type Config struct {
	Name        string
	Email       string
	Count       int
	DeckPath    string
	ReversedPct float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserKey     string
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// Card is one entry of the quiz dataset.
type Card struct {
	ID              int      `toml:"id"`
	Name            string   `toml:"name" validate:"required"`
	UprightMeaning  string   `toml:"upright_meaning" validate:"required"`
	ReversedMeaning string   `toml:"reversed_meaning" validate:"required"`
	Keywords        []string `toml:"keywords"`
	Element         string   `toml:"element" validate:"required"`
	Sign            string   `toml:"associated_sign"`
	Image           string   `toml:"image"`
}

// Mode selects which meaning of a card a question asks about.
type Mode int

const (
	// ModeUpright asks for the upright meaning.
	ModeUpright Mode = iota
	// ModeReversed asks for the meaning when the card is reversed.
	ModeReversed
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeReversed {
		return "reversed"
	}
	return "upright"
}

// Meaning returns the card meaning asked about in this mode.
func (m Mode) Meaning(c Card) string {
	if m == ModeReversed {
		return c.ReversedMeaning
	}
	return c.UprightMeaning
}

// ProgressRecord tallies one user's exposures and answers for a card.
type ProgressRecord struct {
	CardID    int `json:"id"`
	Shown     int `json:"shown"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Valid reports whether the counts are non-negative and consistent.
func (r ProgressRecord) Valid() bool {
	if r.Shown < 0 || r.Correct < 0 || r.Incorrect < 0 {
		return false
	}
	return r.Shown == r.Correct+r.Incorrect
}

// ErrorRatio is the Laplace-smoothed error rate used for prioritization.
func (r ProgressRecord) ErrorRatio() float64 {
	return float64(r.Incorrect) / float64(r.Correct+1)
}

// Profile is what the start form captures.
type Profile struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Count int    `validate:"oneof=15 35 78"`
}

// SessionResult captures a completed quiz run.
type SessionResult struct {
	StartedAt time.Time
	EndedAt   time.Time
	UserKey   string
	Name      string
	Total     int
	Score     int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID int64
	EndedAt   time.Time
	Total     int
	Score     int
}

// SessionLengths lists the question counts offered by the start form.
var SessionLengths = []int{15, 35, 78}
