package mocks

import (
	"context"

	"github.com/dukex/operion-console/pkg/models"
	"github.com/dukex/operion-console/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockProcessGroupRepository is a mock implementation of persistence.ProcessGroupRepository interface.
type MockProcessGroupRepository struct {
	mock.Mock
}

func (m *MockProcessGroupRepository) List(ctx context.Context, opts persistence.ListProcessGroupsOptions) (*persistence.ProcessGroupListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.ProcessGroupListResult), args.Error(1)
}

func (m *MockProcessGroupRepository) GetByID(ctx context.Context, id string) (*models.ProcessGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ProcessGroup), args.Error(1)
}

func (m *MockProcessGroupRepository) Save(ctx context.Context, group *models.ProcessGroup) error {
	args := m.Called(ctx, group)

	return args.Error(0)
}

func (m *MockProcessGroupRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	ProcessGroups *MockProcessGroupRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{ProcessGroups: &MockProcessGroupRepository{}}
}

func (m *MockPersistence) ProcessGroupRepository() persistence.ProcessGroupRepository {
	return m.ProcessGroups
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
