package splitter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/domain"
	"jobextract/internal/splitter"
)

const twoPostings = "IT_JOBS\r\n" +
	"preamble that is dropped\n" +
	"Job Posting: job001.txt\n" +
	"Position: Engineer\n" +
	"\n" +
	"Job Posting: job002.txt\n" +
	"Position: Analyst\n"

func TestSplit_TwoPostings(t *testing.T) {
	doc, err := splitter.Default().Split(twoPostings)
	require.NoError(t, err)

	assert.Equal(t, "IT_JOBS", doc.Label)
	require.Len(t, doc.Postings, 2)

	assert.Equal(t, 0, doc.Postings[0].Index)
	assert.Equal(t, "Job Posting: job001.txt", doc.Postings[0].Header)
	assert.Equal(t, "Job Posting: job001.txt\nPosition: Engineer\n", doc.Postings[0].Text)

	assert.Equal(t, 1, doc.Postings[1].Index)
	assert.Equal(t, "Job Posting: job002.txt", doc.Postings[1].Header)
	assert.Equal(t, "Job Posting: job002.txt\nPosition: Analyst\n", doc.Postings[1].Text)
}

func TestSplit_NoHeaderYieldsNoPostings(t *testing.T) {
	doc, err := splitter.Default().Split("LABEL\nPosition: Engineer\nclasscode: 1\n")
	require.NoError(t, err)
	assert.Equal(t, "LABEL", doc.Label)
	assert.Empty(t, doc.Postings)
}

func TestSplit_EmptyContent(t *testing.T) {
	doc, err := splitter.Default().Split("")
	require.NoError(t, err)
	assert.Equal(t, "", doc.Label)
	assert.Empty(t, doc.Postings)
}

func TestSplit_HeaderOnFirstLineIsNotABoundary(t *testing.T) {
	doc, err := splitter.Default().Split("Job Posting: job001.txt\nPosition: Engineer\n")
	require.NoError(t, err)
	assert.Equal(t, "Job Posting: job001.txt", doc.Label)
	assert.Empty(t, doc.Postings)
}

func TestSplit_HeaderMustStartALine(t *testing.T) {
	content := "L\nJob Posting: job1.txt\nsee Job Posting: job2.txt inline\n"
	doc, err := splitter.Default().Split(content)
	require.NoError(t, err)
	require.Len(t, doc.Postings, 1)
	assert.Contains(t, doc.Postings[0].Text, "inline")
}

func TestSplit_BinaryContentIsSplitError(t *testing.T) {
	_, err := splitter.Default().Split("LABEL\nJob Posting: job1.txt\n\x00\x01")

	var splitErr *domain.SplitError
	require.ErrorAs(t, err, &splitErr)
	assert.Equal(t, "LABEL", splitErr.Label)
	assert.ErrorIs(t, err, domain.ErrBinaryDocument)
	assert.True(t, domain.IsSkippable(err))
}

func TestSplit_OversizeIsSplitError(t *testing.T) {
	s, err := splitter.New(splitter.Options{MaxBytes: 32})
	require.NoError(t, err)

	_, err = s.Split("LABEL\n" + strings.Repeat("x", 64))
	assert.ErrorIs(t, err, domain.ErrDocumentTooLarge)
	assert.True(t, domain.IsSkippable(err))
}

func TestNew_CustomAndInvalidPattern(t *testing.T) {
	s, err := splitter.New(splitter.Options{HeaderPattern: `Offre: \d+`})
	require.NoError(t, err)
	doc, err := s.Split("FR\nOffre: 1\nPoste: A\nOffre: 2\nPoste: B")
	require.NoError(t, err)
	require.Len(t, doc.Postings, 2)
	assert.Equal(t, "Offre: 2\nPoste: B", doc.Postings[1].Text)

	_, err = splitter.New(splitter.Options{HeaderPattern: `(`})
	assert.Error(t, err)
}

func TestJoin_SplitIsIdempotent(t *testing.T) {
	inputs := []string{
		twoPostings,
		"L\nJob Posting: job1.txt",
		"L\n\nJob Posting: job1.txt\n\n\nJob Posting: job22.txt\r\nPosition: X\r\n\r\n",
		"\nJob Posting: job1.txt\nJob Posting: job2.txt\nJob Posting: job3.txt\n",
		"NOHEADER",
	}

	s := splitter.Default()
	for _, in := range inputs {
		first, err := s.Split(in)
		require.NoError(t, err)

		second, err := s.Split(splitter.Join(first))
		require.NoError(t, err)
		assert.Equal(t, first, second, "input %q", in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "CAT", splitter.Label("  CAT \r\nrest"))
	assert.Equal(t, "only", splitter.Label("only"))
	assert.Equal(t, "", splitter.Label("\nsecond"))
}
