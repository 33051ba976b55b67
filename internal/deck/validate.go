package deck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// OptionCount is the number of choices offered per question.
const OptionCount = 4

// ValidationResults collects dataset problems. Errors make a deck unusable.
type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Err joins the errors, or returns nil when there are none.
func (r ValidationResults) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.New("invalid deck: " + strings.Join(r.Errors, "; "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the dataset invariants the quiz relies on.
func (d *Deck) Validate() ValidationResults {
	var res ValidationResults
	if len(d.cards) == 0 {
		res.Errors = append(res.Errors, "deck has no cards")
		return res
	}

	seen := map[int]bool{}
	upright := map[string]struct{}{}
	reversed := map[string]struct{}{}
	for _, c := range d.cards {
		if seen[c.ID] {
			res.Errors = append(res.Errors, fmt.Sprintf("duplicate card id %d", c.ID))
		}
		seen[c.ID] = true
		if err := validate.Struct(c); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					res.Errors = append(res.Errors, fmt.Sprintf("card %d: %s is %s", c.ID, fe.Field(), fe.Tag()))
				}
			} else {
				res.Errors = append(res.Errors, fmt.Sprintf("card %d: %v", c.ID, err))
			}
		}
		if c.UprightMeaning != "" {
			upright[c.UprightMeaning] = struct{}{}
		}
		if c.ReversedMeaning != "" {
			reversed[c.ReversedMeaning] = struct{}{}
		}
		if c.Element != "" {
			if _, ok := d.glossary.Elements[c.Element]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("card %d: element %q has no glossary entry", c.ID, c.Element))
			}
		}
		if c.Sign != "" {
			if _, ok := d.glossary.Signs[c.Sign]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("card %d: sign %q has no glossary entry", c.ID, c.Sign))
			}
		}
	}
	if len(upright) < OptionCount {
		res.Errors = append(res.Errors, fmt.Sprintf("need at least %d distinct upright meanings, have %d", OptionCount, len(upright)))
	}
	if len(reversed) < OptionCount {
		res.Errors = append(res.Errors, fmt.Sprintf("need at least %d distinct reversed meanings, have %d", OptionCount, len(reversed)))
	}
	return res
}
