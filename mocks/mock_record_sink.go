package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobextract/internal/domain"
)

// MockRecordSink is a mock implementation of port.RecordSink.
type MockRecordSink struct {
	mock.Mock
}

func (m *MockRecordSink) Write(ctx context.Context, records []domain.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRecordSink) Close() error {
	args := m.Called()
	return args.Error(0)
}
