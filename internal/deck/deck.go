// Package deck loads the card dataset and glossary used by the quiz.
package deck

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

//go:embed data/cards.toml data/glossary.toml
var dataFiles embed.FS

// ErrUnknownCard is returned when a card id is not part of the deck.
var ErrUnknownCard = errors.New("deck: unknown card")

// Glossary describes elements and astrological signs by name.
type Glossary struct {
	Elements map[string]string `toml:"elements"`
	Signs    map[string]string `toml:"astrological_signs"`
}

// Deck is an immutable, id-ordered set of cards plus its glossary.
type Deck struct {
	Name     string
	Path     string
	cards    []model.Card
	byID     map[int]int
	glossary Glossary
}

type deckFile struct {
	Deck struct {
		Name string `toml:"name"`
	} `toml:"deck"`
	Cards    []model.Card      `toml:"cards"`
	Elements map[string]string `toml:"elements"`
	Signs    map[string]string `toml:"astrological_signs"`
}

// Default returns the bundled deck.
func Default() (*Deck, error) {
	glossary, err := defaultGlossary()
	if err != nil {
		return nil, err
	}
	raw, err := dataFiles.ReadFile("data/cards.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled deck: %w", err)
	}
	d, err := Decode(bytes.NewReader(raw), glossary)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bundled deck: %w", err)
	}
	d.Name = "Rider-Waite-Smith"
	return d, nil
}

// LoadFile decodes a deck TOML file. Glossary tables missing from the file
// are taken from the bundled glossary.
func LoadFile(path string) (*Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only deck file.
			_ = cerr
		}
	}()
	glossary, err := defaultGlossary()
	if err != nil {
		return nil, err
	}
	d, err := Decode(file, glossary)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// Decode parses deck TOML from r and validates it.
func Decode(r io.Reader, fallback Glossary) (*Deck, error) {
	var f deckFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	glossary := Glossary{Elements: f.Elements, Signs: f.Signs}
	if len(glossary.Elements) == 0 {
		glossary.Elements = fallback.Elements
	}
	if len(glossary.Signs) == 0 {
		glossary.Signs = fallback.Signs
	}
	d := New(f.Cards, glossary)
	d.Name = f.Deck.Name
	results := d.Validate()
	if err := results.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// New builds a deck from cards, ordered by id. It does not validate.
func New(cards []model.Card, glossary Glossary) *Deck {
	sorted := make([]model.Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	byID := make(map[int]int, len(sorted))
	for i, c := range sorted {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = i
		}
	}
	return &Deck{cards: sorted, byID: byID, glossary: glossary}
}

func defaultGlossary() (Glossary, error) {
	raw, err := dataFiles.ReadFile("data/glossary.toml")
	if err != nil {
		return Glossary{}, fmt.Errorf("failed to read glossary: %w", err)
	}
	var g Glossary
	if _, err := toml.Decode(string(raw), &g); err != nil {
		return Glossary{}, fmt.Errorf("failed to decode glossary: %w", err)
	}
	return g, nil
}

// Cards returns the cards ordered by id. The slice must not be modified.
func (d *Deck) Cards() []model.Card {
	return d.cards
}

// Len returns the number of cards.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Card returns the card with the given id.
func (d *Deck) Card(id int) (model.Card, error) {
	idx, ok := d.byID[id]
	if !ok {
		return model.Card{}, fmt.Errorf("%w: %d", ErrUnknownCard, id)
	}
	return d.cards[idx], nil
}

// Has reports whether the deck contains a card with the given id.
func (d *Deck) Has(id int) bool {
	_, ok := d.byID[id]
	return ok
}

// Find looks a card up by id or case-insensitive name.
func (d *Deck) Find(query string) (model.Card, error) {
	query = strings.TrimSpace(query)
	if id, err := strconv.Atoi(query); err == nil {
		return d.Card(id)
	}
	for _, c := range d.cards {
		if strings.EqualFold(c.Name, query) {
			return c, nil
		}
	}
	return model.Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, query)
}

// Glossary returns the deck glossary.
func (d *Deck) Glossary() Glossary {
	return d.glossary
}

// Field is one labelled line of a card explanation.
type Field struct {
	Label       string
	Value       string
	Description string
}

// Explain lists what the quiz shows when a user asks to learn about a card.
// The sign line is omitted for cards without one.
func (d *Deck) Explain(c model.Card) []Field {
	fields := []Field{
		{Label: "Upright Meaning", Value: c.UprightMeaning},
		{Label: "Reversed Meaning", Value: c.ReversedMeaning},
	}
	if len(c.Keywords) > 0 {
		fields = append(fields, Field{Label: "Keywords", Value: strings.Join(c.Keywords, ", ")})
	}
	fields = append(fields, Field{
		Label:       "Associated Element",
		Value:       c.Element,
		Description: d.glossary.Elements[c.Element],
	})
	if c.Sign != "" {
		fields = append(fields, Field{
			Label:       "Associated Sign",
			Value:       c.Sign,
			Description: d.glossary.Signs[c.Sign],
		})
	}
	return fields
}
