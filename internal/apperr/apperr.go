// Package apperr defines the typed sentinel errors the Scan Engine returns
// for expected failure paths, as an alternative to bare fmt.Errorf strings
// at boundaries a caller might want to branch on with errors.As.
package apperr

import "fmt"

// NotFound is returned when a referenced record, source, or file does not
// exist.
type NotFound struct {
	Resource string
	ID       string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// InvalidInput is returned when a configuration value fails validation
// before a scan starts.
type InvalidInput struct {
	Field   string
	Message string
}

func (e *InvalidInput) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Conflict is returned when an operation cannot proceed because of the
// current state of an output path (e.g. an existing file a scan isn't
// configured to overwrite).
type Conflict struct {
	Resource string
	Message  string
}

func (e *Conflict) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Resource, e.Message)
}
