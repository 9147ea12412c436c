package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/prepdeck/prepdeck/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListAll(ctx context.Context) ([]models.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Insert(ctx context.Context, card models.Card) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) ApplyUpdate(ctx context.Context, update models.CardUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockCardRepository) ApplyUpdates(ctx context.Context, updates []models.CardUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockCardRepository) SetLeechSuspended(ctx context.Context, id int64, suspended bool) error {
	args := m.Called(ctx, id, suspended)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
