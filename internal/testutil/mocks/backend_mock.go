package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/worddee/internal/models"
)

// MockBackend is a mock of the Worddee API client.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchWord(ctx context.Context) (models.Word, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Word), args.Error(1)
}

func (m *MockBackend) ValidateSentence(ctx context.Context, req models.ValidateRequest) (models.ValidationResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.ValidationResult), args.Error(1)
}

func (m *MockBackend) FetchSummary(ctx context.Context, clientDate string) (models.Summary, error) {
	args := m.Called(ctx, clientDate)
	return args.Get(0).(models.Summary), args.Error(1)
}

func (m *MockBackend) FetchHistory(ctx context.Context) ([]models.HistoryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryItem), args.Error(1)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
