package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/kodawari/backend/internal/model"
)

// Library is the label catalogue plus a labelled recipe page
type Library struct {
	Labels  []model.Label   `json:"labels"`
	Recipes []RecipeSummary `json:"recipes"`
}

// LibraryService combines the recipe and label stores for browsing
type LibraryService struct {
	recipes *RecipeService
	labels  *LabelService
}

// NewLibraryService creates a new LibraryService
func NewLibraryService(recipes *RecipeService, labels *LabelService) *LibraryService {
	return &LibraryService{recipes: recipes, labels: labels}
}

// RecipesWithLabels reads the owner's labels and a recipe page concurrently
// and annotates every recipe with the labels attached to it.
func (s *LibraryService) RecipesWithLabels(ctx context.Context, ownerID string, opts ListOptions) (*Library, error) {
	var (
		labels  []model.Label
		recipes []RecipeSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		labels, err = s.labels.ListLabels(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		recipes, err = s.recipes.ListRecipes(gctx, ownerID, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	byRecipe, err := s.labels.labelsByRecipe(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		recipes[i].Labels = byRecipe[recipes[i].ID]
		if recipes[i].Labels == nil {
			recipes[i].Labels = []LabelRef{}
		}
	}

	return &Library{Labels: labels, Recipes: recipes}, nil
}
