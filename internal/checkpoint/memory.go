package checkpoint

import (
	"context"
	"sync"

	"jobextract/internal/domain"
)

// MemoryStore keeps checkpoints for the life of the process.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{seen: map[string]string{}}
}

func (s *MemoryStore) Seen(_ context.Context, f domain.InputFile) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[f.Location] == f.Fingerprint(), nil
}

func (s *MemoryStore) Mark(_ context.Context, files []domain.InputFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range files {
		s.seen[f.Location] = f.Fingerprint()
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
