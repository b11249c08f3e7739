package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobextract/internal/domain"
)

// MockJobPostingRepo is a mock implementation of port.JobPostingRepository.
type MockJobPostingRepo struct {
	mock.Mock
}

func (m *MockJobPostingRepo) InsertBatch(ctx context.Context, records []domain.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockJobPostingRepo) List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.StoredRecord, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StoredRecord), args.Int(1), args.Error(2)
}

func (m *MockJobPostingRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
