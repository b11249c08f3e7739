package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical encoding of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day, kept in UTC.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-M-D, accepting single-digit month and day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-1-2", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %v", ErrMalformedDate, err)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("scanning %T into Date: %w", src, ErrFieldType)
	}
}

// RawDocument is one input file's full text, owned by the driver until it
// is split.
type RawDocument struct {
	Source  string
	Content string
}

// Record is the canonical output row. Every ingestion path produces exactly
// this shape; nil pointers are absent values.
type Record struct {
	FileName            string   `json:"file_name" db:"file_name"`
	Position            *string  `json:"position" db:"position"`
	Classcode           *string  `json:"classcode" db:"classcode"`
	SalaryStart         *float64 `json:"salary_start" db:"salary_start"`
	SalaryEnd           *float64 `json:"salary_end" db:"salary_end"`
	StartDate           *Date    `json:"start_date" db:"start_date"`
	EndDate             *Date    `json:"end_date" db:"end_date"`
	Req                 *string  `json:"req" db:"req"`
	Notes               *string  `json:"notes" db:"notes"`
	Duties              *string  `json:"duties" db:"duties"`
	Selection           *string  `json:"selection" db:"selection"`
	ExperienceLength    *int     `json:"experience_length" db:"experience_length"`
	JobType             *string  `json:"job_type" db:"job_type"`
	EducationLength     *int     `json:"education_length" db:"education_length"`
	SchoolType          *string  `json:"school_type" db:"school_type"`
	ApplicationLocation *string  `json:"application_location" db:"application_location"`
}

// StoredRecord is a Record as persisted by the Postgres sink.
type StoredRecord struct {
	ID uuid.UUID `json:"id" db:"id"`
	Record
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RecordFilter narrows a stored-record listing.
type RecordFilter struct {
	FileName string
}

// InputFile is one discovered input, local or remote.
type InputFile struct {
	Location string     `json:"location"`
	Kind     SourceKind `json:"kind"`
	Size     int64      `json:"size"`
	ModTime  time.Time  `json:"mod_time"`
}

// Fingerprint identifies a particular version of the file.
func (f InputFile) Fingerprint() string {
	return fmt.Sprintf("%d:%d", f.Size, f.ModTime.UnixNano())
}

// BatchReport summarizes one micro-batch of the ingest worker.
type BatchReport struct {
	BatchID          uuid.UUID `json:"batch_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Documents        int       `json:"documents"`
	Records          int       `json:"records"`
	SkippedDocuments []string  `json:"skipped_documents"`
	DroppedRecords   []string  `json:"dropped_records"`
	FieldWarnings    int       `json:"field_warnings"`
}

// HasProblems reports whether the batch skipped or dropped anything.
func (r *BatchReport) HasProblems() bool {
	return len(r.SkippedDocuments) > 0 || len(r.DroppedRecords) > 0
}
