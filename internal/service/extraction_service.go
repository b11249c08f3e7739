package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"jobextract/internal/assembler"
	"jobextract/internal/config"
	"jobextract/internal/converge"
	"jobextract/internal/domain"
	"jobextract/internal/extractor"
	"jobextract/internal/logger"
	"jobextract/internal/metrics"
	"jobextract/internal/splitter"
)

// TextResult is the output of extracting one text document.
type TextResult struct {
	Label    string                   `json:"label"`
	Postings int                      `json:"postings"`
	Records  []domain.Record          `json:"records"`
	Warnings []assembler.FieldWarning `json:"-"`
}

// JSONResult is the output of decoding one JSON document.
type JSONResult struct {
	Records    []domain.Record `json:"records"`
	Mismatches []error         `json:"-"`
}

// ExtractionService runs the text and JSON ingestion paths for a single
// document. Both paths produce canonical records.
type ExtractionService interface {
	// ExtractText splits doc into postings and assembles one record per
	// posting. A *domain.SplitError means the document should be skipped.
	ExtractText(ctx context.Context, doc domain.RawDocument) (*TextResult, error)
	// ExtractJSON decodes every object in r. Objects that do not fit the
	// canonical schema are reported as mismatches. On a syntax error the
	// records decoded before it are returned together with the error.
	ExtractJSON(ctx context.Context, source string, r io.Reader) (*JSONResult, error)
}

type extractionService struct {
	splitter  *splitter.Splitter
	assembler *assembler.Assembler
	decoder   *converge.Decoder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	split *splitter.Splitter,
	asm *assembler.Assembler,
	dec *converge.Decoder,
	m *metrics.Metrics,
	l *slog.Logger,
) ExtractionService {
	if m == nil {
		m = metrics.New(nil)
	}
	return &extractionService{
		splitter:  split,
		assembler: asm,
		decoder:   dec,
		metrics:   m,
		logger:    logger.OrDefault(l).With("component", "extraction"),
	}
}

func (s *extractionService) ExtractText(ctx context.Context, doc domain.RawDocument) (*TextResult, error) {
	kind := string(domain.SourceText)

	parsed, err := s.splitter.Split(doc.Content)
	if err != nil {
		s.metrics.DocumentsTotal.WithLabelValues(kind, "skipped").Inc()
		s.logger.Warn("skipping document", "source", doc.Source, "error", err)
		return nil, err
	}

	results, err := s.assembler.AssembleDocument(ctx, parsed)
	if err != nil {
		s.metrics.DocumentsTotal.WithLabelValues(kind, "failed").Inc()
		return nil, fmt.Errorf("extracting %s: %w", doc.Source, err)
	}

	out := &TextResult{
		Label:    parsed.Label,
		Postings: len(parsed.Postings),
		Records:  make([]domain.Record, 0, len(results)),
	}
	for _, r := range results {
		out.Records = append(out.Records, r.Record)
		out.Warnings = append(out.Warnings, r.Warnings...)
		for _, w := range r.Warnings {
			s.metrics.FieldWarningsTotal.WithLabelValues(w.Field).Inc()
		}
	}

	s.metrics.DocumentsTotal.WithLabelValues(kind, "ok").Inc()
	s.metrics.PostingsTotal.Add(float64(len(parsed.Postings)))
	s.metrics.RecordsTotal.WithLabelValues(kind).Add(float64(len(out.Records)))

	if len(parsed.Postings) == 0 {
		s.logger.Info("document has no postings", "source", doc.Source, "label", parsed.Label)
	}
	return out, nil
}

func (s *extractionService) ExtractJSON(ctx context.Context, source string, r io.Reader) (*JSONResult, error) {
	kind := string(domain.SourceJSON)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, mismatches, err := s.decoder.Decode(source, r)
	out := &JSONResult{Records: records, Mismatches: mismatches}

	for _, m := range mismatches {
		s.logger.Warn("dropping record", "source", source, "error", m)
	}
	s.metrics.SchemaMismatchesTotal.Add(float64(len(mismatches)))
	s.metrics.RecordsTotal.WithLabelValues(kind).Add(float64(len(records)))

	if err != nil {
		s.metrics.DocumentsTotal.WithLabelValues(kind, "failed").Inc()
		s.logger.Warn("stopped decoding document", "source", source, "records", len(records), "error", err)
		return out, errors.Join(domain.ErrUnsupportedFormat, err)
	}
	s.metrics.DocumentsTotal.WithLabelValues(kind, "ok").Inc()
	return out, nil
}

// NewExtractionServiceFromConfig builds the splitter, cue registry and JSON
// decoder from configuration. A cue file, when set, overrides the built-in
// cues by field.
func NewExtractionServiceFromConfig(
	extract config.ExtractConfig,
	maxDocumentBytes int,
	m *metrics.Metrics,
	l *slog.Logger,
) (ExtractionService, error) {
	cues := extractor.DefaultCues()
	if extract.CueFile != "" {
		loaded, err := extractor.LoadCues(extract.CueFile)
		if err != nil {
			return nil, err
		}
		cues = loaded
	}
	reg, err := extractor.NewRegistry(cues)
	if err != nil {
		return nil, fmt.Errorf("building cue registry: %w", err)
	}
	split, err := splitter.New(splitter.Options{HeaderPattern: extract.HeaderPattern, MaxBytes: maxDocumentBytes})
	if err != nil {
		return nil, err
	}
	dec, err := converge.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("compiling record schema: %w", err)
	}
	return NewExtractionService(split, assembler.New(reg, l), dec, m, l), nil
}
