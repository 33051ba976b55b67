package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/model"
)

// userNamespace scopes name-based user keys to this application.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/verte-zerg/tarotquiz/users"))

// UserKey derives the opaque storage key for an email address. Case and
// surrounding whitespace do not matter.
func UserKey(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(userNamespace, []byte(normalized)).String()
}

// ProgressStore reads and writes a user's full record set for one deck.
type ProgressStore struct {
	st   *Store
	deck *deck.Deck
}

// Progress returns a ProgressStore for d backed by s.
func (s *Store) Progress(d *deck.Deck) *ProgressStore {
	return &ProgressStore{st: s, deck: d}
}

// Get returns the stored records for key, one per deck card in deck order.
// Missing or malformed data yields a fresh all-zero set.
func (p *ProgressStore) Get(ctx context.Context, key string) ([]model.ProgressRecord, error) {
	blob, ok, err := p.st.LoadBlob(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if !ok {
		return FreshRecords(p.deck), nil
	}
	var stored []model.ProgressRecord
	if err := json.Unmarshal(blob, &stored); err != nil {
		return FreshRecords(p.deck), nil
	}
	return Reconcile(p.deck, stored), nil
}

// Set persists records for key, overwriting prior content.
func (p *ProgressStore) Set(ctx context.Context, key string, records []model.ProgressRecord) error {
	if records == nil {
		records = []model.ProgressRecord{}
	}
	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := p.st.SaveBlob(ctx, key, blob); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// FreshRecords returns one zeroed record per card of d.
func FreshRecords(d *deck.Deck) []model.ProgressRecord {
	cards := d.Cards()
	records := make([]model.ProgressRecord, len(cards))
	for i, c := range cards {
		records[i] = model.ProgressRecord{CardID: c.ID}
	}
	return records
}

// Reconcile aligns stored records with the deck: one record per card in deck
// order, unknown ids dropped, inconsistent records reset to zero.
func Reconcile(d *deck.Deck, stored []model.ProgressRecord) []model.ProgressRecord {
	byID := make(map[int]model.ProgressRecord, len(stored))
	for _, r := range stored {
		if _, dup := byID[r.CardID]; dup {
			continue
		}
		byID[r.CardID] = r
	}
	records := FreshRecords(d)
	for i := range records {
		r, ok := byID[records[i].CardID]
		if ok && r.Valid() {
			records[i] = r
		}
	}
	return records
}
