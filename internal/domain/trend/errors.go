package trend

import (
	"errors"
	"fmt"
)

// ErrNoEvidence signals a run in which zero platforms returned any items.
// It is reported together with the partial RunResult so callers can still
// inspect per-platform health; it is distinct from a successful run that
// found no trending topics.
var ErrNoEvidence = errors.New("no evidence collected from any platform")

// ConfigError is an invalid run configuration, detected before any
// network activity.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigError builds a ConfigError for a single field.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}
