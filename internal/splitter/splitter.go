package splitter

import (
	"fmt"
	"regexp"
	"strings"

	"jobextract/internal/domain"
)

const (
	// DefaultHeaderPattern matches the line that opens each posting.
	DefaultHeaderPattern = `Job Posting: job\d+\.txt`
	// DefaultMaxBytes bounds the size of a single document.
	DefaultMaxBytes = 16 << 20
)

// Options configures a Splitter. Zero values select the defaults.
type Options struct {
	HeaderPattern string
	MaxBytes      int
}

// Posting is one job advertisement cut out of a document. Text starts with
// the header line.
type Posting struct {
	Index  int
	Header string
	Text   string
}

// Document is the result of splitting one raw document.
type Document struct {
	Label    string
	Postings []Posting
}

// Splitter cuts multi-posting documents into individual postings. It holds
// no mutable state and is safe for concurrent use.
type Splitter struct {
	header   *regexp.Regexp
	maxBytes int
}

// New compiles the header pattern.
func New(opts Options) (*Splitter, error) {
	pattern := opts.HeaderPattern
	if pattern == "" {
		pattern = DefaultHeaderPattern
	}
	re, err := regexp.Compile(`(?m)^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compiling header pattern %q: %w", pattern, err)
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Splitter{header: re, maxBytes: maxBytes}, nil
}

// Default returns a Splitter with the default options.
func Default() *Splitter {
	s, err := New(Options{})
	if err != nil {
		panic(fmt.Sprintf("splitter: default options: %v", err))
	}
	return s
}

// Label returns the first line of content with surrounding whitespace
// removed.
func Label(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimSpace(content)
}

// Split returns the document label and its postings. A header only opens a
// posting when it starts a line after the first one; everything before the
// first such header is dropped. A document without headers yields no
// postings and no error.
func (s *Splitter) Split(content string) (Document, error) {
	doc := Document{Label: Label(content)}

	if len(content) > s.maxBytes {
		return doc, &domain.SplitError{
			Label: doc.Label,
			Err:   fmt.Errorf("%w: %d bytes, limit %d", domain.ErrDocumentTooLarge, len(content), s.maxBytes),
		}
	}
	if i := strings.IndexByte(content, 0); i >= 0 {
		return doc, &domain.SplitError{
			Label: doc.Label,
			Err:   fmt.Errorf("%w: NUL byte at offset %d", domain.ErrBinaryDocument, i),
		}
	}

	var bounds [][]int
	for _, loc := range s.header.FindAllStringIndex(content, -1) {
		if loc[0] > 0 {
			bounds = append(bounds, loc)
		}
	}
	if len(bounds) == 0 {
		return doc, nil
	}

	doc.Postings = make([]Posting, 0, len(bounds))
	for i, loc := range bounds {
		end := len(content)
		if i+1 < len(bounds) {
			// Drop the newline that precedes the next header.
			end = bounds[i+1][0] - 1
		}
		doc.Postings = append(doc.Postings, Posting{
			Index:  i,
			Header: content[loc[0]:loc[1]],
			Text:   content[loc[0]:end],
		})
	}
	return doc, nil
}

// Join rebuilds a document from its label and postings. Splitting the
// result yields the same postings.
func Join(doc Document) string {
	var b strings.Builder
	b.WriteString(doc.Label)
	for _, p := range doc.Postings {
		b.WriteByte('\n')
		b.WriteString(p.Text)
	}
	return b.String()
}
