package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig matches any ValidationErrors value with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // Config key, e.g. "log.level"
	Value   any    // The invalid value
	Message string // Human-readable description
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Is reports whether target is ErrInvalidConfig.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}
