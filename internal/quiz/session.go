// Package quiz runs a single quiz session over a prioritized card list.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/generator"
	"github.com/verte-zerg/tarotquiz/internal/model"
	"github.com/verte-zerg/tarotquiz/internal/store"
)

// ErrInvalidState is returned when an operation does not fit the session state.
var ErrInvalidState = errors.New("quiz: invalid state")

// State is the session lifecycle position.
type State int

// Session states.
const (
	NotStarted State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	default:
		return "not started"
	}
}

// ProgressStore persists a user's full record set.
type ProgressStore interface {
	Get(ctx context.Context, key string) ([]model.ProgressRecord, error)
	Set(ctx context.Context, key string, records []model.ProgressRecord) error
}

// HistoryStore records completed sessions.
type HistoryStore interface {
	InsertSession(ctx context.Context, res model.SessionResult) (int64, error)
}

// Question is what the user is asked at the current index.
type Question struct {
	Card    model.Card
	Mode    model.Mode
	Prompt  string
	Options []string
	Answer  string
	Number  int
	Total   int
}

// Feedback reports the outcome of an answer.
type Feedback struct {
	Correct       bool
	Chosen        string
	CorrectAnswer string
}

// Result summarizes a completed session.
type Result struct {
	Name    string
	Score   int
	Total   int
	Percent string
}

// Session is the explicit state of one quiz run.
type Session struct {
	Profile   model.Profile
	UserKey   string
	Cards     []model.Card
	Index     int
	Score     int
	Mode      model.Mode
	Options   []string
	Answered  bool
	StartedAt time.Time
	Records   []model.ProgressRecord
	State     State
}

// Runner drives Session through NotStarted, InProgress and Complete.
type Runner struct {
	deck        *deck.Deck
	progress    ProgressStore
	history     HistoryStore
	gen         *generator.Generator
	reversedPct float64
	now         func() time.Time

	session Session
}

// Option configures a Runner.
type Option func(*Runner)

// WithHistory records completed sessions in h.
func WithHistory(h HistoryStore) Option {
	return func(r *Runner) { r.history = h }
}

// WithReversedPct sets the chance of asking for the reversed meaning.
func WithReversedPct(p float64) Option {
	return func(r *Runner) { r.reversedPct = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// NewRunner constructs a Runner in the NotStarted state.
func NewRunner(d *deck.Deck, progress ProgressStore, gen *generator.Generator, opts ...Option) *Runner {
	r := &Runner{
		deck:        d,
		progress:    progress,
		gen:         gen,
		reversedPct: 0.5,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns a copy of the current session state.
func (r *Runner) Session() Session {
	return r.session
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.session.State
}

// Start validates the profile, loads the user's records and prioritizes the
// cards for a new session.
func (r *Runner) Start(ctx context.Context, p model.Profile) error {
	if r.session.State != NotStarted {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidState, r.session.State)
	}
	p = NormalizeProfile(p)
	if err := ValidateProfile(p); err != nil {
		return err
	}
	key := store.UserKey(p.Email)
	records, err := r.progress.Get(ctx, key)
	if err != nil {
		return err
	}
	cards := r.gen.Prioritize(r.deck, records, p.Count)
	if len(cards) == 0 {
		return fmt.Errorf("deck has no cards to ask about")
	}
	r.session = Session{
		Profile:   p,
		UserKey:   key,
		Cards:     cards,
		StartedAt: r.now(),
		Records:   records,
		State:     InProgress,
	}
	return r.prepareQuestion()
}

func (r *Runner) prepareQuestion() error {
	s := &r.session
	s.Mode = r.gen.Mode(r.reversedPct)
	options, err := r.gen.Options(r.deck, s.Cards[s.Index], s.Mode)
	if err != nil {
		return err
	}
	s.Options = options
	s.Answered = false
	return nil
}

// Current returns the question at the current index.
func (r *Runner) Current() (Question, error) {
	s := r.session
	if s.State != InProgress {
		return Question{}, fmt.Errorf("%w: no current question while %s", ErrInvalidState, s.State)
	}
	card := s.Cards[s.Index]
	return Question{
		Card:    card,
		Mode:    s.Mode,
		Prompt:  Prompt(s.Mode),
		Options: append([]string(nil), s.Options...),
		Answer:  s.Mode.Meaning(card),
		Number:  s.Index + 1,
		Total:   len(s.Cards),
	}, nil
}

// Answer scores choice for the current question and persists the updated
// record set. Each question accepts one answer.
func (r *Runner) Answer(ctx context.Context, choice string) (Feedback, error) {
	s := &r.session
	if s.State != InProgress || s.Answered {
		return Feedback{}, fmt.Errorf("%w: no open question", ErrInvalidState)
	}
	card := s.Cards[s.Index]
	answer := s.Mode.Meaning(card)
	correct := choice == answer

	for i := range s.Records {
		if s.Records[i].CardID != card.ID {
			continue
		}
		s.Records[i].Shown++
		if correct {
			s.Records[i].Correct++
		} else {
			s.Records[i].Incorrect++
		}
		break
	}
	if correct {
		s.Score++
	}
	s.Answered = true

	fb := Feedback{Correct: correct, Chosen: choice, CorrectAnswer: answer}
	if err := r.progress.Set(ctx, s.UserKey, s.Records); err != nil {
		return fb, err
	}
	return fb, nil
}

// IsLast reports whether the current question is the final one.
func (r *Runner) IsLast() bool {
	s := r.session
	return s.State == InProgress && s.Index+1 >= len(s.Cards)
}

// Next advances to the following question, or completes the session after
// the last one. The current question must have been answered.
func (r *Runner) Next(ctx context.Context) error {
	s := &r.session
	if s.State != InProgress || !s.Answered {
		return fmt.Errorf("%w: answer the current question first", ErrInvalidState)
	}
	if s.Index+1 < len(s.Cards) {
		s.Index++
		return r.prepareQuestion()
	}
	s.State = Complete
	s.Options = nil
	if r.history == nil {
		return nil
	}
	_, err := r.history.InsertSession(ctx, model.SessionResult{
		StartedAt: s.StartedAt,
		EndedAt:   r.now(),
		UserKey:   s.UserKey,
		Name:      s.Profile.Name,
		Total:     len(s.Cards),
		Score:     s.Score,
	})
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// Result returns the final score of a completed session.
func (r *Runner) Result() (Result, error) {
	s := r.session
	if s.State != Complete {
		return Result{}, fmt.Errorf("%w: session is %s", ErrInvalidState, s.State)
	}
	return Result{
		Name:    s.Profile.Name,
		Score:   s.Score,
		Total:   len(s.Cards),
		Percent: Percent(s.Score, len(s.Cards)),
	}, nil
}

// Reset discards the session and returns to NotStarted. Stored progress is
// left as it is. The profile is kept so the form can be prefilled.
func (r *Runner) Reset() {
	r.session = Session{Profile: r.session.Profile}
}

// Prompt returns the question text for a mode.
func Prompt(mode model.Mode) string {
	if mode == model.ModeReversed {
		return "What does this card represent when reversed?"
	}
	return "What is the meaning of this card?"
}

// Percent formats score/total as a percentage with two decimals.
func Percent(score, total int) string {
	if total <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(score)/float64(total)*100)
}
