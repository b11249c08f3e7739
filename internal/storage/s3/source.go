package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"jobextract/internal/domain"
	"jobextract/internal/port"
)

const scheme = "s3://"

// Source discovers input files under bucket prefixes. Objects under the
// text prefix must end in .txt and objects under the JSON prefix in .json.
type Source struct {
	storage  port.ObjectStorage
	bucket   string
	prefixes map[domain.SourceKind]string
}

// NewSource creates a Source. An empty prefix disables that input kind.
func NewSource(storage port.ObjectStorage, bucket, textPrefix, jsonPrefix string) *Source {
	prefixes := map[domain.SourceKind]string{}
	if textPrefix != "" {
		prefixes[domain.SourceText] = textPrefix
	}
	if jsonPrefix != "" {
		prefixes[domain.SourceJSON] = jsonPrefix
	}
	return &Source{storage: storage, bucket: bucket, prefixes: prefixes}
}

func (s *Source) Discover(ctx context.Context) ([]domain.InputFile, error) {
	var files []domain.InputFile
	for _, kind := range []domain.SourceKind{domain.SourceText, domain.SourceJSON} {
		prefix, ok := s.prefixes[kind]
		if !ok {
			continue
		}
		objects, err := s.storage.List(ctx, s.bucket, prefix)
		if err != nil {
			return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range objects {
			if !domain.Accepts(kind, obj.Key) {
				continue
			}
			files = append(files, domain.InputFile{
				Location: Location(s.bucket, obj.Key),
				Kind:     kind,
				Size:     obj.Size,
				ModTime:  obj.LastModified,
			})
		}
	}
	return files, nil
}

func (s *Source) Open(ctx context.Context, f domain.InputFile) (io.ReadCloser, error) {
	bucket, key, ok := ParseLocation(f.Location)
	if !ok {
		return nil, fmt.Errorf("not an s3 location: %s", f.Location)
	}
	return s.storage.Download(ctx, bucket, key)
}

func (s *Source) Handles(f domain.InputFile) bool {
	bucket, _, ok := ParseLocation(f.Location)
	return ok && bucket == s.bucket
}

// Location formats an object address as s3://bucket/key.
func Location(bucket, key string) string {
	return scheme + bucket + "/" + key
}

// ParseLocation splits an s3://bucket/key address.
func ParseLocation(loc string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(loc, scheme)
	if !found {
		return "", "", false
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
