package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"jobextract/internal/domain"
)

// MockDocumentSource is a mock implementation of port.DocumentSource.
type MockDocumentSource struct {
	mock.Mock
}

func (m *MockDocumentSource) Discover(ctx context.Context) ([]domain.InputFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InputFile), args.Error(1)
}

func (m *MockDocumentSource) Open(ctx context.Context, f domain.InputFile) (io.ReadCloser, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDocumentSource) Handles(f domain.InputFile) bool {
	args := m.Called(f)
	return args.Bool(0)
}
