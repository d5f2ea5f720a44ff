package events

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/markusmobius/go-dateparser"

	"github.com/questboard/server/internal/domain/rooms"
)

// scheduleLayout is the canonical input format shown to users. Anything else
// falls through to the lenient parser.
const scheduleLayout = "2006-01-02 15:04"

// CreateInput describes a new event. When is the raw user-entered schedule
// text in the guild's display zone; empty means "date not decided yet".
type CreateInput struct {
	GuildID      string `validate:"required"`
	CreatorID    string `validate:"required"`
	ScenarioName string `validate:"required"`
	SystemName   string
	Gamemaster   string
	When         string
	Mode         rooms.Mode `validate:"required"`
}

// EditInput carries the full replacement field set for an event. Empty When,
// SystemName or Gamemaster clear the stored value; an empty ScenarioName is
// rejected.
type EditInput struct {
	GuildID      string `validate:"required"`
	EventID      string `validate:"required"`
	ScenarioName string `validate:"required"`
	SystemName   string
	Gamemaster   string
	When         string
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError converts a validator error into the domain error for its
// first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return ValidationError{Field: fieldErrs[0].Field(), Message: "is required"}
	}
	return ValidationError{Message: err.Error()}
}

// ParseWhen converts user-entered schedule text to a UTC instant. The input
// is interpreted in the given zone; the canonical "2006-01-02 15:04" layout
// is tried first, then lenient natural-language parsing. Empty input returns
// nil (date not decided).
func ParseWhen(input string, zone *time.Location) (*time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}

	if t, err := time.ParseInLocation(scheduleLayout, s, zone); err == nil {
		utc := t.UTC()
		return &utc, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime:     time.Now().In(zone),
		DefaultTimezone: zone,
	}
	dt, err := dateparser.Parse(cfg, s)
	if err != nil || dt.Time.IsZero() {
		return nil, ValidationError{
			Field:   "when",
			Message: "unrecognized date; use yyyy-mm-dd hh:mm",
		}
	}
	utc := dt.Time.UTC()
	return &utc, nil
}
