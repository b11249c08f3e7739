package domain

import (
	"path/filepath"
	"strings"
)

// SourceKind identifies which ingestion path produced a document or record.
type SourceKind string

const (
	SourceText SourceKind = "text"
	SourceJSON SourceKind = "json"
)

// Accepts reports whether the file or object name belongs to the kind's
// ingestion path. Text inputs take every visible file whatever its
// extension; JSON inputs need a .json extension. Names starting with "."
// or "_" are hidden, as are directory keys ending in "/".
func Accepts(kind SourceKind, name string) bool {
	if name == "" || strings.HasSuffix(name, "/") {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
		return false
	}
	switch kind {
	case SourceText:
		return true
	case SourceJSON:
		return strings.EqualFold(filepath.Ext(base), ".json")
	default:
		return false
	}
}

// SinkKind names an output sink.
type SinkKind string

const (
	SinkConsole  SinkKind = "console"
	SinkCSV      SinkKind = "csv"
	SinkXLSX     SinkKind = "xlsx"
	SinkPostgres SinkKind = "postgres"
	SinkKafka    SinkKind = "kafka"
	SinkS3       SinkKind = "s3"
)

// ValidSinkKinds lists every sink kind the pipeline can build.
var ValidSinkKinds = map[SinkKind]bool{
	SinkConsole:  true,
	SinkCSV:      true,
	SinkXLSX:     true,
	SinkPostgres: true,
	SinkKafka:    true,
	SinkS3:       true,
}

// ColumnType is the logical type of a canonical column.
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnFloat   ColumnType = "float"
	ColumnInteger ColumnType = "integer"
	ColumnDate    ColumnType = "date"
)
