package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobextract/internal/domain"
)

// MockCheckpointStore is a mock implementation of port.CheckpointStore.
type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) Seen(ctx context.Context, f domain.InputFile) (bool, error) {
	args := m.Called(ctx, f)
	return args.Bool(0), args.Error(1)
}

func (m *MockCheckpointStore) Mark(ctx context.Context, files []domain.InputFile) error {
	args := m.Called(ctx, files)
	return args.Error(0)
}

func (m *MockCheckpointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
