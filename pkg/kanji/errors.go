package kanji

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrIncomplete matches every *IncompleteDataError via errors.Is.
	ErrIncomplete = errors.New("incomplete data")
)

// Table names used in error values.
const (
	TableKanji    = "kanji"
	TablePhonetic = "phonetic"
	TableLookup   = "lookup"
)

// NotFoundError reports a character missing from a table where it is
// required to exist.
type NotFoundError struct {
	Table     string
	Character string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s table: character %q not found", e.Table, e.Character)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IncompleteDataError reports a known character whose annotation has not
// been curated yet. It is an expected steady state, not a failure.
type IncompleteDataError struct {
	Character string
	Reason    string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("character %q: %s", e.Character, e.Reason)
}

func (e *IncompleteDataError) Is(target error) bool { return target == ErrIncomplete }

// IntegrityWarning reports a stored reference pointing at a character that
// is absent from the table it should belong to.
type IntegrityWarning struct {
	Table     string // table holding the reference
	Character string // entry holding the reference
	Field     string // e.g. "phonetic", "compounds"
	Ref       string // the dangling character
}

func (w *IntegrityWarning) Error() string {
	if w.Ref == "" {
		return fmt.Sprintf("%s[%q].%s: missing reference", w.Table, w.Character, w.Field)
	}
	return fmt.Sprintf("%s[%q].%s: %q does not resolve", w.Table, w.Character, w.Field, w.Ref)
}
