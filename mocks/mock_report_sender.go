package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"jobextract/internal/domain"
)

// MockReportSender is a mock implementation of port.ReportSender.
type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendBatchReport(ctx context.Context, report *domain.BatchReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
