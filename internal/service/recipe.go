package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/model"
)

// Listing defaults and bounds
const (
	DefaultListLimit = 30
	MaxListLimit     = 100
)

var sortFields = map[string]string{
	"created_at": "recipes.created_at",
	"title":      "recipes.title",
}

// ListOptions filters, orders and paginates a recipe listing
type ListOptions struct {
	LabelID   *uuid.UUID
	Limit     int
	Offset    int
	SortField string
	SortOrder string
}

// ParseListOptions validates raw query values. Empty values take defaults and
// the literal label id "null" means no label filter.
func ParseListOptions(labelID, limit, offset, sortField, sortOrder string) (ListOptions, error) {
	opts := ListOptions{
		Limit:     DefaultListLimit,
		SortField: "created_at",
		SortOrder: "desc",
	}

	if labelID != "" && labelID != "null" {
		id, err := uuid.Parse(labelID)
		if err != nil {
			return opts, apperrors.NewValidationError("label_id must be a valid id")
		}
		opts.LabelID = &id
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			return opts, apperrors.NewValidationError("limit must be a positive integer")
		}
		opts.Limit = min(n, MaxListLimit)
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			return opts, apperrors.NewValidationError("offset must be a non-negative integer")
		}
		opts.Offset = n
	}
	if sortField != "" {
		if _, ok := sortFields[sortField]; !ok {
			return opts, apperrors.NewValidationError("sortField must be one of created_at, title")
		}
		opts.SortField = sortField
	}
	if sortOrder != "" {
		switch strings.ToLower(sortOrder) {
		case "asc":
			opts.SortOrder = "asc"
		case "desc":
			opts.SortOrder = "desc"
		default:
			return opts, apperrors.NewValidationError("sortOrder must be asc or desc")
		}
	}
	return opts, nil
}

// LabelRef is the label metadata attached to a listed recipe
type LabelRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// RecipeSummary is one row of a recipe listing
type RecipeSummary struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	Labels    []LabelRef `gorm:"-" json:"labels,omitempty"`
}

// RecipeService stores recipes. Every mutation is scoped by owner.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// CreateRecipe saves a generated recipe. A blank title becomes DefaultRecipeTitle.
func (s *RecipeService) CreateRecipe(ctx context.Context, ownerID, title, body string, formData map[string]any) (*model.Recipe, error) {
	ownerID = strings.TrimSpace(ownerID)
	body = strings.TrimSpace(body)
	if ownerID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if body == "" {
		return nil, apperrors.NewValidationError("recipe is required")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultRecipeTitle
	}

	recipe := &model.Recipe{
		UserID:   ownerID,
		Title:    title,
		Content:  body,
		FormData: model.JSONMap(formData),
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, apperrors.NewStoreError("failed to save recipe", err)
	}
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID. An empty ownerID skips the ownership check.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID, ownerID string) (*model.Recipe, error) {
	query := s.db.WithContext(ctx).Where("id = ?", id)
	if ownerID != "" {
		query = query.Where("user_id = ?", ownerID)
	}

	var recipe model.Recipe
	if err := query.First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("recipe")
		}
		return nil, apperrors.NewStoreError("failed to fetch recipe", err)
	}
	return &recipe, nil
}

// RenameRecipe updates the title of an owned recipe
func (s *RecipeService) RenameRecipe(ctx context.Context, id uuid.UUID, ownerID, title string) (*model.Recipe, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}

	result := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("title", title)
	if result.Error != nil {
		return nil, apperrors.NewStoreError("failed to rename recipe", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewNotFoundError("recipe")
	}
	return s.GetRecipe(ctx, id, ownerID)
}

// DeleteRecipe removes an owned recipe together with its label assignments
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, ownerID).First(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("recipe")
			}
			return apperrors.NewStoreError("failed to delete recipe", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&model.RecipeLabel{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete recipe", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&model.Recipe{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete recipe", err)
		}
		return nil
	})
}

// ListRecipes returns the owner's recipes as id/title pairs
func (s *RecipeService) ListRecipes(ctx context.Context, ownerID string, opts ListOptions) ([]RecipeSummary, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	column, ok := sortFields[opts.SortField]
	if !ok {
		column = sortFields["created_at"]
	}
	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}

	query := s.db.WithContext(ctx).
		Model(&model.Recipe{}).
		Select("recipes.id, recipes.title, recipes.created_at").
		Where("recipes.user_id = ?", ownerID)
	if opts.LabelID != nil {
		query = query.Joins("JOIN recipe_labels ON recipe_labels.recipe_id = recipes.id AND recipe_labels.label_id = ?", *opts.LabelID)
	}

	recipes := []RecipeSummary{}
	err := query.
		Order(fmt.Sprintf("%s %s, recipes.id %s", column, order, order)).
		Limit(opts.Limit).
		Offset(opts.Offset).
		Scan(&recipes).Error
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list recipes", err)
	}
	return recipes, nil
}

// PurgeOwner removes every recipe, label and assignment belonging to ownerID
func (s *RecipeService) PurgeOwner(ctx context.Context, ownerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedRecipes := tx.Model(&model.Recipe{}).Select("id").Where("user_id = ?", ownerID)
		ownedLabels := tx.Model(&model.Label{}).Select("id").Where("user_id = ?", ownerID)

		if err := tx.Where("recipe_id IN (?) OR label_id IN (?)", ownedRecipes, ownedLabels).
			Delete(&model.RecipeLabel{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete account data", err)
		}
		if err := tx.Where("user_id = ?", ownerID).Delete(&model.Recipe{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete account data", err)
		}
		if err := tx.Where("user_id = ?", ownerID).Delete(&model.Label{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete account data", err)
		}
		return nil
	})
}
