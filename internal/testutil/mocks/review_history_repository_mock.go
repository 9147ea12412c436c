package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/prepdeck/prepdeck/internal/models"
)

// MockReviewHistoryRepository is a mock implementation of repository.ReviewHistoryRepository
type MockReviewHistoryRepository struct {
	mock.Mock
}

func (m *MockReviewHistoryRepository) Insert(ctx context.Context, entry models.ReviewEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewHistoryRepository) ListForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewEntry, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEntry), args.Error(1)
}
