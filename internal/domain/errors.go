package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBinaryDocument    = errors.New("document contains binary content")
	ErrDocumentTooLarge  = errors.New("document exceeds maximum allowed size")
	ErrMalformedNumber   = errors.New("malformed number")
	ErrMalformedDate     = errors.New("malformed date")
	ErrUnknownField      = errors.New("unknown canonical field")
	ErrFieldType         = errors.New("value does not match column type")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrSinkUnavailable   = errors.New("record sink unavailable")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrInvalidCueTable   = errors.New("invalid cue table")
	ErrSchemaMismatch    = errors.New("record does not match canonical schema")
	ErrCheckpointLocked  = errors.New("checkpoint store is locked by another process")
)

// SplitError is a document-level failure of the posting splitter. The
// driver skips the whole document and keeps going.
type SplitError struct {
	Label string
	Err   error
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("splitting document %q: %v", e.Label, e.Err)
}

func (e *SplitError) Unwrap() error {
	return e.Err
}

// FieldExtractionError reports a cue that matched but whose captured text
// could not be coerced into the field's type.
type FieldExtractionError struct {
	Field string
	Cue   string
	Raw   string
	Err   error
}

func (e *FieldExtractionError) Error() string {
	return fmt.Sprintf("field %s (cue %q): cannot convert %q: %v", e.Field, e.Cue, e.Raw, e.Err)
}

func (e *FieldExtractionError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError reports a JSON-sourced object that cannot be coerced
// into a Record even after null-defaulting. The object is dropped.
type SchemaMismatchError struct {
	Source string
	Index  int
	Fields []string
	Err    error
}

func (e *SchemaMismatchError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s[%d]: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("%s[%d]: fields %s: %v", e.Source, e.Index, strings.Join(e.Fields, ","), e.Err)
}

func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether err should skip a single document rather than
// abort the batch it belongs to.
func IsSkippable(err error) bool {
	var splitErr *SplitError
	return errors.As(err, &splitErr)
}
