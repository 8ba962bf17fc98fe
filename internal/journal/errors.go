package journal

import (
	"errors"
	"fmt"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
)

// ErrAnalysisUnavailable is recorded on the analyze step when the analyzer
// fails. The note keeps its previous derived fields.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// StorageError reports a failed read or write against the note or summary
// store for one day.
type StorageError struct {
	Op      string
	UserID  string
	DateKey string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s (user %s, date %s): %v", e.Op, e.UserID, e.DateKey, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError names the offending input field. It matches
// common.ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return common.ErrInvalidInput
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
