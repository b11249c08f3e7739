package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical field names, in column order.
const (
	FieldFileName            = "file_name"
	FieldPosition            = "position"
	FieldClasscode           = "classcode"
	FieldSalaryStart         = "salary_start"
	FieldSalaryEnd           = "salary_end"
	FieldStartDate           = "start_date"
	FieldEndDate             = "end_date"
	FieldReq                 = "req"
	FieldNotes               = "notes"
	FieldDuties              = "duties"
	FieldSelection           = "selection"
	FieldExperienceLength    = "experience_length"
	FieldJobType             = "job_type"
	FieldEducationLength     = "education_length"
	FieldSchoolType          = "school_type"
	FieldApplicationLocation = "application_location"
)

// Column describes one canonical column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Columns is the canonical schema. Sinks, the JSON decoder and the
// migrations all follow this order.
var Columns = []Column{
	{FieldFileName, ColumnString, false},
	{FieldPosition, ColumnString, true},
	{FieldClasscode, ColumnString, true},
	{FieldSalaryStart, ColumnFloat, true},
	{FieldSalaryEnd, ColumnFloat, true},
	{FieldStartDate, ColumnDate, true},
	{FieldEndDate, ColumnDate, true},
	{FieldReq, ColumnString, true},
	{FieldNotes, ColumnString, true},
	{FieldDuties, ColumnString, true},
	{FieldSelection, ColumnString, true},
	{FieldExperienceLength, ColumnInteger, true},
	{FieldJobType, ColumnString, true},
	{FieldEducationLength, ColumnInteger, true},
	{FieldSchoolType, ColumnString, true},
	{FieldApplicationLocation, ColumnString, true},
}

// ColumnNames returns the canonical column names in order.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// LookupColumn returns the column with the given name.
func LookupColumn(name string) (Column, bool) {
	for _, c := range Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Values returns the record's values in column order. Absent values are nil;
// present ones are dereferenced.
func (r *Record) Values() []any {
	return []any{
		r.FileName,
		deref(r.Position),
		deref(r.Classcode),
		deref(r.SalaryStart),
		deref(r.SalaryEnd),
		deref(r.StartDate),
		deref(r.EndDate),
		deref(r.Req),
		deref(r.Notes),
		deref(r.Duties),
		deref(r.Selection),
		deref(r.ExperienceLength),
		deref(r.JobType),
		deref(r.EducationLength),
		deref(r.SchoolType),
		deref(r.ApplicationLocation),
	}
}

// Strings renders Values as text, with absent values as the empty string.
func (r *Record) Strings() []string {
	vals := r.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = FormatValue(v)
	}
	return out
}

// FormatValue renders a single column value as text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case Date:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// SetField assigns v to the named column. v must already have the column's
// Go type (string, float64, int or Date); nil clears a nullable column.
func (r *Record) SetField(name string, v any) error {
	if name == FieldFileName {
		s, ok := v.(string)
		if !ok && v != nil {
			return fmt.Errorf("%s: %w", name, ErrFieldType)
		}
		r.FileName = s
		return nil
	}

	col, ok := LookupColumn(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	switch col.Type {
	case ColumnString:
		p, err := ptrOf[string](name, v)
		if err != nil {
			return err
		}
		*r.stringField(name) = p
	case ColumnFloat:
		p, err := ptrOf[float64](name, v)
		if err != nil {
			return err
		}
		if name == FieldSalaryStart {
			r.SalaryStart = p
		} else {
			r.SalaryEnd = p
		}
	case ColumnInteger:
		p, err := ptrOf[int](name, v)
		if err != nil {
			return err
		}
		if name == FieldExperienceLength {
			r.ExperienceLength = p
		} else {
			r.EducationLength = p
		}
	case ColumnDate:
		p, err := ptrOf[Date](name, v)
		if err != nil {
			return err
		}
		if name == FieldStartDate {
			r.StartDate = p
		} else {
			r.EndDate = p
		}
	}
	return nil
}

// StripCarriageReturns removes embedded '\r' from every text column.
func (r *Record) StripCarriageReturns() {
	r.FileName = strings.ReplaceAll(r.FileName, "\r", "")
	for _, c := range Columns {
		if c.Type != ColumnString || c.Name == FieldFileName {
			continue
		}
		p := r.stringField(c.Name)
		if *p != nil {
			s := strings.ReplaceAll(**p, "\r", "")
			*p = &s
		}
	}
}

func (r *Record) stringField(name string) **string {
	switch name {
	case FieldPosition:
		return &r.Position
	case FieldClasscode:
		return &r.Classcode
	case FieldReq:
		return &r.Req
	case FieldNotes:
		return &r.Notes
	case FieldDuties:
		return &r.Duties
	case FieldSelection:
		return &r.Selection
	case FieldJobType:
		return &r.JobType
	case FieldSchoolType:
		return &r.SchoolType
	case FieldApplicationLocation:
		return &r.ApplicationLocation
	}
	panic("domain: no string column " + name)
}

func ptrOf[T any](name string, v any) (*T, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("%s: %w (got %T)", name, ErrFieldType, v)
	}
	return &t, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
