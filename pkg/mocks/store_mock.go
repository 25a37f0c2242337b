package mocks

import (
	"context"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of editor.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, id string) (*models.ProcessGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ProcessGroup), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, id string, group *models.ProcessGroup) (*models.ProcessGroup, error) {
	args := m.Called(ctx, id, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ProcessGroup), args.Error(1)
}
