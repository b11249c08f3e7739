package extractor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobextract/internal/domain"
)

// Capture selects how the text following a cue phrase is captured and
// converted.
type Capture string

const (
	// CaptureLines captures every occurrence up to end of line and joins
	// them with ", ".
	CaptureLines Capture = "lines"
	// CaptureToken captures a run of non-whitespace.
	CaptureToken Capture = "token"
	// CaptureAmount captures digits with optional separators; every comma is
	// stripped before parsing.
	CaptureAmount Capture = "amount"
	// CaptureDate captures YYYY-M-D.
	CaptureDate Capture = "date"
	// CaptureSentence captures up to the next '.', newline or end of text.
	CaptureSentence Capture = "sentence"
	// CaptureCount captures an integer followed by "years".
	CaptureCount Capture = "count"
)

var validCaptures = map[Capture]domain.ColumnType{
	CaptureLines:    domain.ColumnString,
	CaptureToken:    domain.ColumnString,
	CaptureSentence: domain.ColumnString,
	CaptureAmount:   domain.ColumnFloat,
	CaptureDate:     domain.ColumnDate,
	CaptureCount:    domain.ColumnInteger,
}

// Cue is one row of the field-cue table.
type Cue struct {
	Field      string  `yaml:"field"`
	Phrase     string  `yaml:"phrase"`
	Capture    Capture `yaml:"capture"`
	IgnoreCase bool    `yaml:"ignore_case,omitempty"`
	DotAll     bool    `yaml:"dot_all,omitempty"`
	AllowPlus  bool    `yaml:"allow_plus,omitempty"`
}

// Validate checks that the cue names a canonical column and that its
// capture produces that column's type.
func (c Cue) Validate() error {
	if c.Phrase == "" {
		return fmt.Errorf("%w: field %q has an empty phrase", domain.ErrInvalidCueTable, c.Field)
	}
	if c.Field == domain.FieldFileName {
		return fmt.Errorf("%w: %s comes from the document label", domain.ErrInvalidCueTable, c.Field)
	}
	col, ok := domain.LookupColumn(c.Field)
	if !ok {
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidCueTable, c.Field)
	}
	typ, ok := validCaptures[c.Capture]
	if !ok {
		return fmt.Errorf("%w: field %q has unknown capture %q", domain.ErrInvalidCueTable, c.Field, c.Capture)
	}
	if typ != col.Type {
		return fmt.Errorf("%w: capture %q yields %s but %s is %s",
			domain.ErrInvalidCueTable, c.Capture, typ, c.Field, col.Type)
	}
	return nil
}

// DefaultCues returns the built-in English cue table, one entry per
// extracted column.
func DefaultCues() []Cue {
	return []Cue{
		{Field: domain.FieldPosition, Phrase: "Position:", Capture: CaptureLines},
		{Field: domain.FieldClasscode, Phrase: "classcode:", Capture: CaptureToken, IgnoreCase: true},
		{Field: domain.FieldSalaryStart, Phrase: "Salary starts at", Capture: CaptureAmount},
		// Not anchored to "Salary"; may match unrelated "ends at" text.
		{Field: domain.FieldSalaryEnd, Phrase: "ends at", Capture: CaptureAmount},
		{Field: domain.FieldStartDate, Phrase: "from", Capture: CaptureDate},
		{Field: domain.FieldEndDate, Phrase: "until", Capture: CaptureDate},
		{Field: domain.FieldReq, Phrase: "Required skills:", Capture: CaptureSentence, DotAll: true},
		{Field: domain.FieldNotes, Phrase: "Additional notes:", Capture: CaptureSentence, DotAll: true},
		{Field: domain.FieldDuties, Phrase: "Primary duties:", Capture: CaptureSentence, DotAll: true},
		{Field: domain.FieldSelection, Phrase: "Selection process:", Capture: CaptureSentence, DotAll: true},
		{Field: domain.FieldExperienceLength, Phrase: "Experience required:", Capture: CaptureCount, AllowPlus: true},
		{Field: domain.FieldJobType, Phrase: "Job type:", Capture: CaptureSentence},
		{Field: domain.FieldEducationLength, Phrase: "Educational requirement:", Capture: CaptureCount},
		{Field: domain.FieldSchoolType, Phrase: "Preferred school type:", Capture: CaptureSentence},
		{Field: domain.FieldApplicationLocation, Phrase: "Application location:", Capture: CaptureSentence},
	}
}

type cueFile struct {
	Cues []Cue `yaml:"cues"`
}

// LoadCues reads a YAML cue file and merges it over the defaults. Entries
// replace the default cue for the same field; entries for fields without a
// default are appended.
func LoadCues(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cue file %s: %w", path, err)
	}
	var f cueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing cue file %s: %w", path, err)
	}
	return MergeCues(DefaultCues(), f.Cues), nil
}

// MergeCues overlays overrides onto base by field name, keeping base order.
func MergeCues(base, overrides []Cue) []Cue {
	out := make([]Cue, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, c := range out {
		index[c.Field] = i
	}
	for _, o := range overrides {
		if i, ok := index[o.Field]; ok {
			out[i] = o
			continue
		}
		index[o.Field] = len(out)
		out = append(out, o)
	}
	return out
}
