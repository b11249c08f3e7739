package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"jobextract/internal/domain"
)

// Extractor pulls one canonical field out of a posting's text. It is
// compiled once from a Cue and is safe for concurrent use.
type Extractor struct {
	cue     Cue
	pattern *regexp.Regexp
	convert func(raw string) (any, error)
}

// Compile builds an Extractor from a cue.
func Compile(c Cue) (*Extractor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	phrase := regexp.QuoteMeta(c.Phrase)
	var expr string
	var convert func(string) (any, error)

	switch c.Capture {
	case CaptureLines:
		expr = phrase + `\s*(.+)`
		convert = asString
	case CaptureToken:
		expr = phrase + `\s*(\S+)`
		convert = asString
	case CaptureAmount:
		expr = phrase + `[^\d]*([\d,]+)`
		convert = parseAmount
	case CaptureDate:
		expr = phrase + `\s*(\d{4}-\d{1,2}-\d{1,2})`
		convert = parseDate
	case CaptureSentence:
		expr = phrase + `\s*(.+?)(?:\.|\n|$)`
		convert = asString
	case CaptureCount:
		plus := ""
		if c.AllowPlus {
			plus = `\+?`
		}
		expr = phrase + `\s*(\d+)` + plus + `\s*years`
		convert = parseCount
	}

	flags := ""
	if c.IgnoreCase {
		flags += "i"
	}
	if c.DotAll && c.Capture != CaptureLines {
		flags += "s"
	}
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", domain.ErrInvalidCueTable, c.Field, err)
	}
	return &Extractor{cue: c, pattern: re, convert: convert}, nil
}

// Field returns the canonical column this extractor fills.
func (e *Extractor) Field() string { return e.cue.Field }

// Cue returns the cue the extractor was compiled from.
func (e *Extractor) Cue() Cue { return e.cue }

// Extract returns the field's value, or Absent when the cue does not occur.
// An error is returned only when the cue matched and the captured text could
// not be converted; it is always a *domain.FieldExtractionError.
func (e *Extractor) Extract(text string) (Value, error) {
	if text == "" {
		return Absent(), nil
	}

	if e.cue.Capture == CaptureLines {
		return e.extractAll(text), nil
	}

	m := e.pattern.FindStringSubmatch(text)
	if m == nil {
		return Absent(), nil
	}
	raw := strings.TrimSpace(m[1])
	v, err := e.convert(raw)
	if err != nil {
		return Absent(), &domain.FieldExtractionError{
			Field: e.cue.Field,
			Cue:   e.cue.Phrase,
			Raw:   raw,
			Err:   err,
		}
	}
	return Of(v), nil
}

func (e *Extractor) extractAll(text string) Value {
	matches := e.pattern.FindAllStringSubmatch(text, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m[1]); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return Absent()
	}
	return Of(strings.Join(parts, ", "))
}

func asString(raw string) (any, error) {
	return raw, nil
}

func parseAmount(raw string) (any, error) {
	s := strings.ReplaceAll(raw, ",", "")
	if s == "" {
		return nil, fmt.Errorf("%w: no digits", domain.ErrMalformedNumber)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedNumber, err)
	}
	return f, nil
}

func parseDate(raw string) (any, error) {
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func parseCount(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedNumber, err)
	}
	return n, nil
}
