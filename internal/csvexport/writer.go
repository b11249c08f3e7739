package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"jobextract/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting canonical records as CSV. The
// header row is the canonical column names in order.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 16-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(domain.ColumnNames())
}

// WriteRecords writes one row per record. Absent values are empty cells.
func (w *Writer) WriteRecords(records []domain.Record) error {
	for i := range records {
		if err := w.csv.Write(records[i].Strings()); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes BOM, header and records, then flushes.
func Export(out io.Writer, records []domain.Record, withBOM bool) error {
	if withBOM {
		if _, err := out.Write(BOM); err != nil {
			return err
		}
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecords(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {prefix}_{YYYYMMDDTHHMMSS}_{suffix}.{ext} in UTC.
func BuildFilename(prefix, suffix, ext string, at time.Time) string {
	name := fmt.Sprintf("%s_%s", SanitizeFilename(prefix), at.UTC().Format("20060102T150405"))
	if s := SanitizeFilename(suffix); s != "" {
		name += "_" + s
	}
	return name + "." + ext
}
