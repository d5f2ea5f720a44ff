package events

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced event no longer exists in the guild's
// collection.
var ErrNotFound = errors.New("event not found")

// ValidationError reports rejected caller input; no state was changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConfigError indicates a guild-level setting required by the operation has
// not been configured yet. The operation was aborted before any side effect.
type ConfigError struct {
	Missing string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("guild configuration incomplete: %s not set", e.Missing)
}
