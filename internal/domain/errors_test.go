package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobextract/internal/domain"
)

func TestSplitError_UnwrapAndSkippable(t *testing.T) {
	err := &domain.SplitError{Label: "CATEGORY", Err: domain.ErrBinaryDocument}

	assert.ErrorIs(t, err, domain.ErrBinaryDocument)
	assert.Contains(t, err.Error(), "CATEGORY")
	assert.True(t, domain.IsSkippable(fmt.Errorf("batch: %w", err)))
	assert.False(t, domain.IsSkippable(errors.New("disk full")))
}

func TestFieldExtractionError_Message(t *testing.T) {
	err := &domain.FieldExtractionError{
		Field: "salary_start",
		Cue:   "Salary starts at",
		Raw:   ",",
		Err:   domain.ErrMalformedNumber,
	}

	assert.ErrorIs(t, err, domain.ErrMalformedNumber)
	assert.Contains(t, err.Error(), "salary_start")
	assert.Contains(t, err.Error(), `cannot convert ","`)
}

func TestSchemaMismatchError_Message(t *testing.T) {
	err := &domain.SchemaMismatchError{
		Source: "input/jobs.json",
		Index:  2,
		Fields: []string{"position", "req"},
		Err:    domain.ErrSchemaMismatch,
	}

	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Equal(t, "input/jobs.json[2]: fields position,req: record does not match canonical schema", err.Error())
}
