package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
)

// MockLabelService is a mock implementation of the label service
type MockLabelService struct {
	mock.Mock
}

// ListLabels mocks the ListLabels method
func (m *MockLabelService) ListLabels(ctx context.Context, ownerID string) ([]model.Label, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Label), args.Error(1)
}

// CreateLabel mocks the CreateLabel method
func (m *MockLabelService) CreateLabel(ctx context.Context, ownerID, name string) (*model.Label, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Label), args.Error(1)
}

// RenameLabel mocks the RenameLabel method
func (m *MockLabelService) RenameLabel(ctx context.Context, id uuid.UUID, ownerID, name string) (*model.Label, error) {
	args := m.Called(ctx, id, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Label), args.Error(1)
}

// DeleteLabel mocks the DeleteLabel method
func (m *MockLabelService) DeleteLabel(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// AttachLabel mocks the AttachLabel method
func (m *MockLabelService) AttachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error {
	args := m.Called(ctx, recipeID, labelID, ownerID)
	return args.Error(0)
}

// DetachLabel mocks the DetachLabel method
func (m *MockLabelService) DetachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error {
	args := m.Called(ctx, recipeID, labelID, ownerID)
	return args.Error(0)
}

// LabelsForRecipe mocks the LabelsForRecipe method
func (m *MockLabelService) LabelsForRecipe(ctx context.Context, recipeID uuid.UUID, ownerID string) ([]service.LabelRef, error) {
	args := m.Called(ctx, recipeID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.LabelRef), args.Error(1)
}
