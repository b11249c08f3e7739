package assembler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/assembler"
	"jobextract/internal/domain"
	"jobextract/internal/extractor"
	"jobextract/internal/splitter"
)

const categoryDoc = "CATEGORY_LABEL\n" +
	"Job Posting: job001.txt\n" +
	"Position: Engineer\n" +
	"classcode: 1234X\n" +
	"Salary starts at 50,000 and ends at 70,000\n" +
	"Required skills: Python.\n"

func newAssembler(buf *bytes.Buffer) *assembler.Assembler {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return assembler.New(extractor.DefaultRegistry(), logger)
}

func TestAssembleDocument_CategoryExample(t *testing.T) {
	doc, err := splitter.Default().Split(categoryDoc)
	require.NoError(t, err)

	var logs bytes.Buffer
	results, err := newAssembler(&logs).AssembleDocument(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, results, 1)

	rec := results[0].Record
	assert.Empty(t, results[0].Warnings)
	assert.Equal(t, "CATEGORY_LABEL", rec.FileName)
	require.NotNil(t, rec.Position)
	assert.Equal(t, "Engineer", *rec.Position)
	require.NotNil(t, rec.Classcode)
	assert.Equal(t, "1234X", *rec.Classcode)
	require.NotNil(t, rec.SalaryStart)
	assert.Equal(t, 50000.0, *rec.SalaryStart)
	require.NotNil(t, rec.SalaryEnd)
	assert.Equal(t, 70000.0, *rec.SalaryEnd)
	require.NotNil(t, rec.Req)
	assert.Equal(t, "Python", *rec.Req)

	assert.Nil(t, rec.StartDate)
	assert.Nil(t, rec.EndDate)
	assert.Nil(t, rec.Notes)
	assert.Nil(t, rec.Duties)
	assert.Nil(t, rec.Selection)
	assert.Nil(t, rec.ExperienceLength)
	assert.Nil(t, rec.JobType)
	assert.Nil(t, rec.EducationLength)
	assert.Nil(t, rec.SchoolType)
	assert.Nil(t, rec.ApplicationLocation)
	assert.Empty(t, logs.String())
}

func TestAssemble_MalformedSalaryIsIsolated(t *testing.T) {
	var logs bytes.Buffer
	p := splitter.Posting{
		Index: 3,
		Text:  "Job Posting: job9.txt\nPosition: Engineer\nclasscode: 1234X\nSalary starts at ,,\n",
	}

	rec, warnings := newAssembler(&logs).Assemble("LABEL", p)

	assert.Nil(t, rec.SalaryStart)
	require.NotNil(t, rec.Position)
	assert.Equal(t, "Engineer", *rec.Position)
	require.NotNil(t, rec.Classcode)
	assert.Equal(t, "1234X", *rec.Classcode)

	require.Len(t, warnings, 1)
	assert.Equal(t, domain.FieldSalaryStart, warnings[0].Field)
	assert.Equal(t, "Salary starts at", warnings[0].Cue)
	assert.Equal(t, ",", warnings[0].Snippet)
	assert.ErrorIs(t, warnings[0].Err, domain.ErrMalformedNumber)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "assembler", entry["component"])
	assert.Equal(t, "LABEL", entry["label"])
	assert.Equal(t, float64(3), entry["posting"])
	assert.Equal(t, domain.FieldSalaryStart, entry["field"])
	assert.Equal(t, ",", entry["snippet"])
}

func TestAssemble_SnippetIsTruncated(t *testing.T) {
	p := splitter.Posting{Text: "Salary starts at " + strings.Repeat("999,", 120) + "x"}

	_, warnings := assembler.New(extractor.DefaultRegistry(), nil).Assemble("L", p)
	require.Len(t, warnings, 1)
	assert.Len(t, warnings[0].Snippet, 120)
}

func TestAssemble_IndianGroupedSalaries(t *testing.T) {
	p := splitter.Posting{Text: "Job Posting: job4.txt\nSalary starts at 1,00,000 and ends at 2,50,000\n"}

	rec, warnings := assembler.New(extractor.DefaultRegistry(), nil).Assemble("L", p)
	assert.Empty(t, warnings)
	require.NotNil(t, rec.SalaryStart)
	assert.Equal(t, 100000.0, *rec.SalaryStart)
	require.NotNil(t, rec.SalaryEnd)
	assert.Equal(t, 250000.0, *rec.SalaryEnd)
}

func TestAssemble_StripsCarriageReturns(t *testing.T) {
	p := splitter.Posting{Text: "Position: Eng\rineer\r\nJob type: Full\r-time.\r\n"}

	rec, warnings := assembler.New(extractor.DefaultRegistry(), nil).Assemble("L\r", p)
	assert.Empty(t, warnings)
	assert.Equal(t, "L", rec.FileName)
	require.NotNil(t, rec.Position)
	assert.Equal(t, "Engineer", *rec.Position)
	require.NotNil(t, rec.JobType)
	assert.Equal(t, "Full-time", *rec.JobType)
}

func TestAssemble_EmptyPosting(t *testing.T) {
	rec, warnings := assembler.New(extractor.DefaultRegistry(), nil).Assemble("L", splitter.Posting{})
	assert.Empty(t, warnings)
	assert.Equal(t, domain.Record{FileName: "L"}, rec)
}

func TestAssembleContext_CanceledEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := splitter.Posting{Text: "Position: Engineer\n"}
	rec, warnings, err := assembler.New(extractor.DefaultRegistry(), nil).AssembleContext(ctx, "L", p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.Record{}, rec)
	assert.Nil(t, warnings)
}

func TestAssembleDocument_Canceled(t *testing.T) {
	doc, err := splitter.Default().Split(categoryDoc)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := assembler.New(extractor.DefaultRegistry(), nil).AssembleDocument(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}
