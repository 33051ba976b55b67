package quiz

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/generator"
	"github.com/verte-zerg/tarotquiz/internal/model"
	"github.com/verte-zerg/tarotquiz/internal/store"
)

type testEnv struct {
	deck     *deck.Deck
	store    *store.Store
	progress *store.ProgressStore
	runner   *Runner
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	d, err := deck.Default()
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "tarotquiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	ps := st.Progress(d)
	opts = append([]Option{WithHistory(st)}, opts...)
	return &testEnv{
		deck:     d,
		store:    st,
		progress: ps,
		runner:   NewRunner(d, ps, generator.NewWithSeed(11), opts...),
	}
}

var seer = model.Profile{Name: "Seer", Email: "seer@example.com", Count: 15}

// answerAll answers every question, getting the first correctN right.
func answerAll(t *testing.T, r *Runner, correctN int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; r.State() == InProgress; i++ {
		q, err := r.Current()
		require.NoError(t, err)
		choice := q.Answer
		if i >= correctN {
			for _, o := range q.Options {
				if o != q.Answer {
					choice = o
					break
				}
			}
		}
		_, err = r.Answer(ctx, choice)
		require.NoError(t, err)
		require.NoError(t, r.Next(ctx))
	}
}

func TestStartWithNoHistory(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.runner.Start(context.Background(), seer))

	s := env.runner.Session()
	assert.Equal(t, InProgress, s.State)
	assert.Len(t, s.Cards, 15)
	assert.Zero(t, s.Index)
	assert.Zero(t, s.Score)
	seen := map[int]bool{}
	for _, c := range s.Cards {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}

	q, err := env.runner.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Number)
	assert.Equal(t, 15, q.Total)
	assert.Len(t, q.Options, deck.OptionCount)
	assert.Contains(t, q.Options, q.Answer)
	assert.Equal(t, Prompt(q.Mode), q.Prompt)
}

func TestStartRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t)
	err := env.runner.Start(context.Background(), model.Profile{Name: "Seer", Email: "nope", Count: 15})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
	assert.Equal(t, NotStarted, env.runner.State())
}

func TestCorrectAnswerUpdatesAndPersistsRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runner.Start(ctx, seer))

	q, err := env.runner.Current()
	require.NoError(t, err)
	fb, err := env.runner.Answer(ctx, q.Answer)
	require.NoError(t, err)
	assert.True(t, fb.Correct)
	assert.Equal(t, 1, env.runner.Session().Score)

	stored, err := env.progress.Get(ctx, store.UserKey(seer.Email))
	require.NoError(t, err)
	for _, r := range stored {
		if r.CardID == q.Card.ID {
			assert.Equal(t, model.ProgressRecord{CardID: q.Card.ID, Shown: 1, Correct: 1, Incorrect: 0}, r)
		} else {
			assert.Zero(t, r.Shown)
		}
	}

	_, err = env.runner.Answer(ctx, q.Answer)
	assert.ErrorIs(t, err, ErrInvalidState, "a question takes one answer")
}

func TestIncorrectAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runner.Start(ctx, seer))

	q, err := env.runner.Current()
	require.NoError(t, err)
	fb, err := env.runner.Answer(ctx, "not an option")
	require.NoError(t, err)
	assert.False(t, fb.Correct)
	assert.Equal(t, q.Answer, fb.CorrectAnswer)
	assert.Zero(t, env.runner.Session().Score)

	stored, err := env.progress.Get(ctx, store.UserKey(seer.Email))
	require.NoError(t, err)
	for _, r := range stored {
		if r.CardID == q.Card.ID {
			assert.Equal(t, 1, r.Shown)
			assert.Equal(t, 1, r.Incorrect)
			assert.Zero(t, r.Correct)
		}
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runner.Start(ctx, seer))
	assert.ErrorIs(t, env.runner.Next(ctx), ErrInvalidState)
}

func TestCompleteSessionScore(t *testing.T) {
	ended := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := newTestEnv(t, WithClock(func() time.Time { return ended }))
	ctx := context.Background()
	require.NoError(t, env.runner.Start(ctx, seer))

	answerAll(t, env.runner, 10)
	require.Equal(t, Complete, env.runner.State())

	res, err := env.runner.Result()
	require.NoError(t, err)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 15, res.Total)
	assert.Equal(t, "66.67", res.Percent)
	assert.Equal(t, "Seer", res.Name)

	sessions, err := env.store.ListSessions(ctx, model.StatsConfig{UserKey: store.UserKey(seer.Email)})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 10, sessions[0].Score)
	assert.Equal(t, 15, sessions[0].Total)

	_, err = env.runner.Current()
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestResetKeepsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.runner.Start(ctx, seer))
	answerAll(t, env.runner, 15)

	env.runner.Reset()
	s := env.runner.Session()
	assert.Equal(t, NotStarted, s.State)
	assert.Zero(t, s.Score)
	assert.Zero(t, s.Index)
	assert.Equal(t, seer, s.Profile)

	stored, err := env.progress.Get(ctx, store.UserKey(seer.Email))
	require.NoError(t, err)
	shown := 0
	for _, r := range stored {
		shown += r.Shown
		assert.True(t, r.Valid())
	}
	assert.Equal(t, 15, shown)

	// The next run starts with cards never shown before.
	require.NoError(t, env.runner.Start(ctx, seer))
	for _, c := range env.runner.Session().Cards {
		for _, r := range stored {
			if r.CardID == c.ID {
				assert.Zero(t, r.Shown, "card %d was already shown", c.ID)
			}
		}
	}
}

func TestSessionTruncatedToDeckSize(t *testing.T) {
	cards := []model.Card{
		{ID: 0, Name: "A", UprightMeaning: "u0", ReversedMeaning: "r0", Element: "Fire"},
		{ID: 1, Name: "B", UprightMeaning: "u1", ReversedMeaning: "r1", Element: "Fire"},
		{ID: 2, Name: "C", UprightMeaning: "u2", ReversedMeaning: "r2", Element: "Fire"},
		{ID: 3, Name: "D", UprightMeaning: "u3", ReversedMeaning: "r3", Element: "Fire"},
	}
	d := deck.New(cards, deck.Glossary{})
	st, err := store.Open(filepath.Join(t.TempDir(), "tarotquiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	r := NewRunner(d, st.Progress(d), generator.NewWithSeed(1), WithReversedPct(1))
	require.NoError(t, r.Start(context.Background(), seer))
	assert.Len(t, r.Session().Cards, 4)

	q, err := r.Current()
	require.NoError(t, err)
	assert.Equal(t, model.ModeReversed, q.Mode)
	assert.Equal(t, 4, q.Total)

	answerAll(t, r, 4)
	res, err := r.Result()
	require.NoError(t, err)
	assert.Equal(t, "100.00", res.Percent)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "66.67", Percent(10, 15))
	assert.Equal(t, "0.00", Percent(0, 0))
	assert.Equal(t, "100.00", Percent(78, 78))
}

func TestValidateProfile(t *testing.T) {
	cases := []struct {
		name    string
		profile model.Profile
		wantErr string
	}{
		{name: "valid", profile: seer},
		{name: "missing name", profile: model.Profile{Name: "  ", Email: "a@b.co", Count: 15}, wantErr: "name is required"},
		{name: "missing email", profile: model.Profile{Name: "A", Count: 35}, wantErr: "email is required"},
		{name: "bad email", profile: model.Profile{Name: "A", Email: "ab.co", Count: 78}, wantErr: "not valid"},
		{name: "bad count", profile: model.Profile{Name: "A", Email: "a@b.co", Count: 20}, wantErr: "15, 35, 78"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateProfile(tc.profile)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
