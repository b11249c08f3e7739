package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"jobextract/internal/csvexport"
	"jobextract/internal/domain"
	"jobextract/internal/port"
)

// ObjectStore uploads each batch as a CSV object under a key prefix.
type ObjectStore struct {
	mu      sync.Mutex
	storage port.ObjectStorage
	bucket  string
	prefix  string
	seq     int
	now     func() time.Time
}

func NewObjectStore(storage port.ObjectStorage, bucket, prefix string) *ObjectStore {
	return &ObjectStore{storage: storage, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *ObjectStore) Write(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := csvexport.Export(&buf, records, true); err != nil {
		return fmt.Errorf("s3 sink: encoding batch: %w", err)
	}

	s.mu.Lock()
	name := csvexport.BuildFilename(filePrefix, fmt.Sprintf("%06d", s.seq), "csv", s.now())
	s.seq++
	s.mu.Unlock()

	key := path.Join(s.prefix, name)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: "text/csv",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return fmt.Errorf("s3 sink: uploading %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) Close() error { return nil }
