package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"jobextract/internal/csvexport"
	"jobextract/internal/domain"
)

const (
	filePrefix = "job_postings"
	sheetName  = "Postings"
)

// encodeFunc writes one batch in a file format.
type encodeFunc func(w io.Writer, records []domain.Record) error

// File writes every batch to a new file under a directory.
type File struct {
	mu     sync.Mutex
	dir    string
	ext    string
	encode encodeFunc
	seq    int
	now    func() time.Time
}

// NewCSVFile creates a sink that writes one CSV file (with BOM) per batch.
func NewCSVFile(dir string) (*File, error) {
	return newFile(dir, "csv", func(w io.Writer, records []domain.Record) error {
		return csvexport.Export(w, records, true)
	})
}

// NewXLSXFile creates a sink that writes one workbook per batch.
func NewXLSXFile(dir string) (*File, error) {
	return newFile(dir, "xlsx", EncodeXLSX)
}

func newFile(dir, ext string, encode encodeFunc) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	return &File{dir: dir, ext: ext, encode: encode, now: time.Now}, nil
}

func (f *File) Write(_ context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	f.mu.Lock()
	name := csvexport.BuildFilename(filePrefix, fmt.Sprintf("%06d", f.seq), f.ext, f.now())
	f.seq++
	f.mu.Unlock()

	path := filepath.Join(f.dir, name)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s sink: %w", f.ext, err)
	}
	if err := f.encode(out, records); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%s sink: writing %s: %w", f.ext, name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%s sink: closing %s: %w", f.ext, name, err)
	}
	return nil
}

func (f *File) Close() error { return nil }

// EncodeXLSX writes records as a single-sheet workbook with the canonical
// header row. Numbers stay numeric and dates are written as YYYY-MM-DD.
func EncodeXLSX(w io.Writer, records []domain.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, name := range domain.ColumnNames() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	for r := range records {
		row := r + 2
		for c, v := range records[r].Values() {
			if v == nil {
				continue
			}
			if d, ok := v.(domain.Date); ok {
				v = d.String()
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}
