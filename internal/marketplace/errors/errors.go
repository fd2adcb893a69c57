// Package errors defines the error kinds surfaced by the application
// workflow. Callers match them with errors.Is; lower layers wrap them with
// context using %w.
package errors

import (
	"fmt"
)

var (
	ErrNotFound         = fmt.Errorf("not found")
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInvalidState     = fmt.Errorf("invalid state")
	ErrConflict         = fmt.Errorf("conflict")
	ErrPermissionDenied = fmt.Errorf("permission denied")
)
