package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tarotquiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testDeck(t *testing.T) *deck.Deck {
	t.Helper()
	d, err := deck.Default()
	require.NoError(t, err)
	return d
}

func TestGetReturnsFreshRecords(t *testing.T) {
	st := openTestStore(t)
	d := testDeck(t)
	ps := st.Progress(d)

	records, err := ps.Get(context.Background(), UserKey("seer@example.com"))
	require.NoError(t, err)
	require.Len(t, records, d.Len())
	for i, r := range records {
		assert.Equal(t, d.Cards()[i].ID, r.CardID)
		assert.Zero(t, r.Shown)
		assert.Zero(t, r.Correct)
		assert.Zero(t, r.Incorrect)
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	st := openTestStore(t)
	d := testDeck(t)
	ps := st.Progress(d)
	ctx := context.Background()
	key := UserKey("seer@example.com")

	records := FreshRecords(d)
	records[3] = model.ProgressRecord{CardID: 3, Shown: 5, Correct: 2, Incorrect: 3}
	require.NoError(t, ps.Set(ctx, key, records))

	got, err := ps.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	records[3].Shown++
	records[3].Correct++
	require.NoError(t, ps.Set(ctx, key, records))
	got, err = ps.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 6, got[3].Shown, "last write wins")

	other, err := ps.Get(ctx, UserKey("other@example.com"))
	require.NoError(t, err)
	assert.Zero(t, other[3].Shown)
}

func TestGetFallsBackOnMalformedBlob(t *testing.T) {
	st := openTestStore(t)
	d := testDeck(t)
	ctx := context.Background()
	key := UserKey("seer@example.com")

	require.NoError(t, st.SaveBlob(ctx, key, []byte("{not json")))
	got, err := st.Progress(d).Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, FreshRecords(d), got)
}

func TestReconcile(t *testing.T) {
	d := testDeck(t)
	stored := []model.ProgressRecord{
		{CardID: 0, Shown: 2, Correct: 1, Incorrect: 1},
		{CardID: 1, Shown: 9, Correct: 1, Incorrect: 1},
		{CardID: 2, Shown: -1, Correct: 0, Incorrect: -1},
		{CardID: 500, Shown: 1, Correct: 1},
	}
	got := Reconcile(d, stored)
	require.Len(t, got, d.Len())
	assert.Equal(t, stored[0], got[0])
	assert.Equal(t, model.ProgressRecord{CardID: 1}, got[1])
	assert.Equal(t, model.ProgressRecord{CardID: 2}, got[2])
	for _, r := range got {
		assert.NotEqual(t, 500, r.CardID)
		assert.True(t, r.Valid())
	}
}

func TestUserKeyIsStableAndOpaque(t *testing.T) {
	a := UserKey("Seer@Example.com ")
	b := UserKey("seer@example.com")
	assert.Equal(t, a, b)
	assert.NotContains(t, a, "example")
	assert.NotEqual(t, a, UserKey("other@example.com"))
}

func TestListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	key := UserKey("seer@example.com")

	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		id, err := st.InsertSession(ctx, model.SessionResult{
			StartedAt: start,
			EndedAt:   start.Add(5 * time.Minute),
			UserKey:   key,
			Name:      "Seer",
			Total:     15,
			Score:     10 + i,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := st.InsertSession(ctx, model.SessionResult{
		StartedAt: time.Unix(0, 0),
		EndedAt:   time.Unix(60, 0),
		UserKey:   UserKey("other@example.com"),
		Name:      "Other",
		Total:     35,
		Score:     1,
	})
	require.NoError(t, err)

	sessions, err := st.ListSessions(ctx, model.StatsConfig{UserKey: key})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	for i, s := range sessions {
		assert.Equal(t, ids[i], s.SessionID)
		assert.Equal(t, 15, s.Total)
		assert.Equal(t, 10+i, s.Score)
	}

	since := time.Unix(0, 0).Add(90 * time.Minute)
	sessions, err = st.ListSessions(ctx, model.StatsConfig{UserKey: key, Since: &since})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, ids[2], sessions[0].SessionID)

	all, err := st.ListSessions(ctx, model.StatsConfig{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
