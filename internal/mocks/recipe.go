package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// CreateRecipe mocks the CreateRecipe method
func (m *MockRecipeService) CreateRecipe(ctx context.Context, ownerID, title, body string, formData map[string]any) (*model.Recipe, error) {
	args := m.Called(ctx, ownerID, title, body, formData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// GetRecipe mocks the GetRecipe method
func (m *MockRecipeService) GetRecipe(ctx context.Context, id uuid.UUID, ownerID string) (*model.Recipe, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// RenameRecipe mocks the RenameRecipe method
func (m *MockRecipeService) RenameRecipe(ctx context.Context, id uuid.UUID, ownerID, title string) (*model.Recipe, error) {
	args := m.Called(ctx, id, ownerID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

// DeleteRecipe mocks the DeleteRecipe method
func (m *MockRecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// ListRecipes mocks the ListRecipes method
func (m *MockRecipeService) ListRecipes(ctx context.Context, ownerID string, opts service.ListOptions) ([]service.RecipeSummary, error) {
	args := m.Called(ctx, ownerID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RecipeSummary), args.Error(1)
}

// MockLibraryService is a mock implementation of the combined recipe and label read
type MockLibraryService struct {
	mock.Mock
}

// RecipesWithLabels mocks the RecipesWithLabels method
func (m *MockLibraryService) RecipesWithLabels(ctx context.Context, ownerID string, opts service.ListOptions) (*service.Library, error) {
	args := m.Called(ctx, ownerID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Library), args.Error(1)
}
