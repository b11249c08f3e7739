package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"jobextract/internal/domain"
	"jobextract/internal/extractor"
	"jobextract/internal/splitter"
)

const maxSnippet = 120

// FieldWarning records a field that was dropped from a record because its
// cue matched but the value could not be used.
type FieldWarning struct {
	Posting int
	Field   string
	Cue     string
	Snippet string
	Err     error
}

// Result is one assembled posting of a document.
type Result struct {
	Posting  splitter.Posting
	Record   domain.Record
	Warnings []FieldWarning
}

// Assembler turns posting text into canonical records by running every
// registered extractor. It is stateless apart from its registry and logger.
type Assembler struct {
	registry *extractor.Registry
	logger   *slog.Logger
}

// New creates an Assembler. A nil logger discards warnings.
func New(reg *extractor.Registry, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{registry: reg, logger: logger.With("component", "assembler")}
}

// Assemble builds the record for one posting. Failing fields are left
// absent and reported as warnings; the rest of the record is kept.
func (a *Assembler) Assemble(label string, p splitter.Posting) (domain.Record, []FieldWarning) {
	rec, warnings, _ := a.AssembleContext(context.Background(), label, p)
	return rec, warnings
}

// AssembleContext is Assemble with cancellation checked between fields. On
// cancellation it returns a zero record and ctx.Err().
func (a *Assembler) AssembleContext(ctx context.Context, label string, p splitter.Posting) (domain.Record, []FieldWarning, error) {
	rec := domain.Record{FileName: label}
	var warnings []FieldWarning

	for _, e := range a.registry.All() {
		if err := ctx.Err(); err != nil {
			return domain.Record{}, nil, err
		}

		v, err := safeExtract(e, p.Text)
		if err == nil && v.Present() {
			err = rec.SetField(e.Field(), v.Any())
		}
		if err != nil {
			w := FieldWarning{
				Posting: p.Index,
				Field:   e.Field(),
				Cue:     e.Cue().Phrase,
				Snippet: snippet(err, p.Text),
				Err:     err,
			}
			warnings = append(warnings, w)
			a.logger.Warn("field extraction failed",
				"label", label,
				"posting", p.Index,
				"field", w.Field,
				"cue", w.Cue,
				"snippet", w.Snippet,
				"error", err,
			)
		}
	}

	rec.StripCarriageReturns()
	return rec, warnings, nil
}

// AssembleDocument assembles every posting of doc in order. Cancellation
// stops before the next posting; results already produced are returned.
func (a *Assembler) AssembleDocument(ctx context.Context, doc splitter.Document) ([]Result, error) {
	results := make([]Result, 0, len(doc.Postings))
	for _, p := range doc.Postings {
		rec, warnings, err := a.AssembleContext(ctx, doc.Label, p)
		if err != nil {
			return results, fmt.Errorf("assembling %q posting %d: %w", doc.Label, p.Index, err)
		}
		results = append(results, Result{Posting: p, Record: rec, Warnings: warnings})
	}
	return results, nil
}

func safeExtract(e *extractor.Extractor, text string) (v extractor.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = extractor.Absent()
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return e.Extract(text)
}

func snippet(err error, text string) string {
	s := text
	var fe *domain.FieldExtractionError
	if errors.As(err, &fe) {
		s = fe.Raw
	}
	if len(s) > maxSnippet {
		s = s[:maxSnippet]
	}
	return s
}
