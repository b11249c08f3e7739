package converge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"jobextract/internal/domain"
)

const schemaURL = "canonical_record.json"

// Decoder turns pre-structured JSON into canonical records. Objects whose
// known keys hold non-scalar values are dropped; everything else is coerced
// field by field, with unusable values becoming null.
type Decoder struct {
	schema *jsonschema.Schema
}

// NewDecoder compiles the record schema derived from domain.Columns.
func NewDecoder() (*Decoder, error) {
	b, err := json.Marshal(recordSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Decoder{schema: schema}, nil
}

func recordSchema() map[string]any {
	scalar := map[string]any{"type": []string{"string", "number", "boolean", "null"}}
	props := make(map[string]any, len(domain.Columns))
	for _, c := range domain.Columns {
		props[c.Name] = scalar
	}
	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
}

// Decode reads a stream of concatenated JSON objects and arrays of objects
// from r. Records that fail the schema are reported in mismatches and
// skipped. A syntax error stops decoding; records decoded before it are
// still returned.
func (d *Decoder) Decode(source string, r io.Reader) ([]domain.Record, []error, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []domain.Record
	var mismatches []error
	index := 0
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return records, mismatches, nil
			}
			return records, mismatches, fmt.Errorf("decoding %s: %w", source, err)
		}

		items, ok := v.([]any)
		if !ok {
			items = []any{v}
		}
		for _, item := range items {
			rec, err := d.DecodeValue(source, index, item)
			index++
			if err != nil {
				mismatches = append(mismatches, err)
				continue
			}
			records = append(records, rec)
		}
	}
}

// DecodeValue validates and coerces a single decoded JSON value. Numbers
// may be json.Number or float64.
func (d *Decoder) DecodeValue(source string, index int, v any) (domain.Record, error) {
	if err := d.schema.Validate(v); err != nil {
		return domain.Record{}, &domain.SchemaMismatchError{
			Source: source,
			Index:  index,
			Fields: offendingFields(err),
			Err:    fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err),
		}
	}

	obj := v.(map[string]any)
	var rec domain.Record
	for _, c := range domain.Columns {
		val := coerce(c.Type, obj[c.Name])
		if c.Name == domain.FieldFileName && val == nil {
			val = ""
		}
		if err := rec.SetField(c.Name, val); err != nil {
			return domain.Record{}, &domain.SchemaMismatchError{
				Source: source, Index: index, Fields: []string{c.Name}, Err: err,
			}
		}
	}
	return rec, nil
}

func offendingFields(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	seen := map[string]bool{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			if f := strings.TrimPrefix(e.InstanceLocation, "/"); f != "" {
				if i := strings.IndexByte(f, '/'); i >= 0 {
					f = f[:i]
				}
				seen[f] = true
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	fields := make([]string, 0, len(seen))
	for f := range seen {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func coerce(t domain.ColumnType, v any) any {
	if v == nil {
		return nil
	}
	switch t {
	case domain.ColumnString:
		return coerceString(v)
	case domain.ColumnFloat:
		return coerceFloat(v)
	case domain.ColumnInteger:
		return coerceInt(v)
	case domain.ColumnDate:
		return coerceDate(v)
	}
	return nil
}

func coerceString(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return nil
}

func coerceFloat(v any) any {
	var f float64
	var err error
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return nil
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func coerceInt(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.Atoi(x.String()); err == nil {
			return n
		}
		return integral(x.Float64())
	case float64:
		return integral(x, nil)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return nil
}

func integral(f float64, err error) any {
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return nil
	}
	return int(f)
}

func coerceDate(v any) any {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		s = s[:i]
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil
	}
	return d
}
