package parser

import (
	"errors"
	"fmt"

	"github.com/sentio-labs/chatlens/internal/chat"
)

// ErrNoFiles is returned by Merge when called with an empty file list.
var ErrNoFiles = errors.New("no export files provided")

// InvalidFormatError reports the first structural problem found while
// validating an export against a platform's expected shape. Field names the
// offending top-level field so callers can surface a useful message.
type InvalidFormatError struct {
	Platform chat.Platform
	Field    string
	Reason   string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid %s export: field %q %s", e.Platform, e.Field, e.Reason)
}

func invalidf(platform chat.Platform, field, format string, args ...any) error {
	return &InvalidFormatError{
		Platform: platform,
		Field:    field,
		Reason:   fmt.Sprintf(format, args...),
	}
}
