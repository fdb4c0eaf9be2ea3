package models

import (
	"errors"
	"fmt"
)

// ErrNotFound wird zurückgegeben, wenn eine angefragte ID nicht existiert.
var ErrNotFound = errors.New("record not found")

// ErrValidation ist die gemeinsame Wurzel aller Validierungsfehler.
var ErrValidation = errors.New("validation failed")

// ValidationError beschreibt ein ungültiges Feld.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialError ist ein Validierungsfehler für Fremdschlüssel, die auf keine Zeile zeigen.
type ReferentialError struct {
	Field string
	ID    uint
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: no record with id %d", e.Field, e.ID)
}

func (e *ReferentialError) Is(target error) bool { return target == ErrValidation }

// IsValidation meldet, ob err (oder ein gewrappter Fehler) ein Validierungsfehler ist.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
