package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeProfile trims form input.
func NormalizeProfile(p model.Profile) model.Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	return p
}

// ValidateProfile checks the start form values and reports the first problem
// in user-facing terms.
func ValidateProfile(p model.Profile) error {
	err := validate.Struct(NormalizeProfile(p))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch fe := verrs[0]; fe.Field() {
	case "Name":
		return fmt.Errorf("name is required")
	case "Email":
		if fe.Tag() == "required" {
			return fmt.Errorf("email is required")
		}
		return fmt.Errorf("email %q is not valid", p.Email)
	case "Count":
		return fmt.Errorf("question count must be one of %s", lengthList())
	default:
		return err
	}
}

func lengthList() string {
	parts := make([]string, len(model.SessionLengths))
	for i, n := range model.SessionLengths {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
