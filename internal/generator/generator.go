// Package generator orders cards for a session and builds answer choices.
package generator

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/verte-zerg/tarotquiz/internal/deck"
	"github.com/verte-zerg/tarotquiz/internal/model"
)

// ErrNotEnoughOptions is returned when the deck has too few distinct
// meanings to fill a question.
var ErrNotEnoughOptions = errors.New("generator: not enough distinct meanings for options")

// Generator produces randomized card orders and option sets.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Prioritize orders the deck for a session of at most count cards.
// Never-shown cards come first in random order, followed by shown cards
// ranked by descending incorrect/(correct+1). Cards with exactly equal
// ratios are shuffled among themselves. Records for unknown cards are ignored.
func (g *Generator) Prioritize(d *deck.Deck, records []model.ProgressRecord, count int) []model.Card {
	if count <= 0 {
		return nil
	}
	var neverShown, shown []model.ProgressRecord
	for _, r := range records {
		if !d.Has(r.CardID) {
			continue
		}
		if r.Shown == 0 {
			neverShown = append(neverShown, r)
		} else {
			shown = append(shown, r)
		}
	}

	g.shuffle(neverShown)
	sort.SliceStable(shown, func(i, j int) bool {
		return shown[i].ErrorRatio() > shown[j].ErrorRatio()
	})
	g.shuffleTies(shown)

	ordered := append(neverShown, shown...)
	if count > len(ordered) {
		count = len(ordered)
	}
	cards := make([]model.Card, 0, count)
	for _, r := range ordered[:count] {
		c, err := d.Card(r.CardID)
		if err != nil {
			continue
		}
		cards = append(cards, c)
	}
	return cards
}

func (g *Generator) shuffle(records []model.ProgressRecord) {
	g.rnd.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
}

// shuffleTies shuffles each run of equal ratios in an already sorted slice.
func (g *Generator) shuffleTies(sorted []model.ProgressRecord) {
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].ErrorRatio() == sorted[start].ErrorRatio() {
			continue
		}
		if i-start > 1 {
			g.shuffle(sorted[start:i])
		}
		start = i
	}
}

// Options returns deck.OptionCount distinct meanings for card in the given
// mode: the correct one plus distractors drawn without replacement from the
// other distinct meanings in the deck, in random order.
func (g *Generator) Options(d *deck.Deck, card model.Card, mode model.Mode) ([]string, error) {
	correct := mode.Meaning(card)
	seen := map[string]struct{}{correct: {}}
	var pool []string
	for _, c := range d.Cards() {
		m := mode.Meaning(c)
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		pool = append(pool, m)
	}
	need := deck.OptionCount - 1
	if len(pool) < need {
		return nil, ErrNotEnoughOptions
	}
	// Partial Fisher-Yates: the first need entries become a uniform sample.
	for i := 0; i < need; i++ {
		j := i + g.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	options := append([]string{correct}, pool[:need]...)
	g.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}

// Mode picks the framing of the next question. reversedPct is the chance
// of asking for the reversed meaning.
func (g *Generator) Mode(reversedPct float64) model.Mode {
	if reversedPct <= 0 {
		return model.ModeUpright
	}
	if g.rnd.Float64() < reversedPct {
		return model.ModeReversed
	}
	return model.ModeUpright
}
