package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/model"
)

// LabelService stores labels and their assignments to recipes
type LabelService struct {
	db          *gorm.DB
	uniqueNames bool
}

// NewLabelService creates a new LabelService. With uniqueNames set, an owner
// cannot hold two labels with the same name.
func NewLabelService(db *gorm.DB, uniqueNames bool) *LabelService {
	return &LabelService{db: db, uniqueNames: uniqueNames}
}

// ListLabels returns the owner's labels ordered by creation
func (s *LabelService) ListLabels(ctx context.Context, ownerID string) ([]model.Label, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}

	labels := []model.Label{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&labels).Error; err != nil {
		return nil, apperrors.NewStoreError("failed to list labels", err)
	}
	return labels, nil
}

// CreateLabel creates a label for ownerID
func (s *LabelService) CreateLabel(ctx context.Context, ownerID, name string) (*model.Label, error) {
	ownerID = strings.TrimSpace(ownerID)
	name = strings.TrimSpace(name)
	if ownerID == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	label := &model.Label{UserID: ownerID, Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUniqueName(tx, ownerID, name, uuid.Nil); err != nil {
			return err
		}
		if err := tx.Create(label).Error; err != nil {
			return apperrors.NewStoreError("failed to create label", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return label, nil
}

// RenameLabel renames an owned label
func (s *LabelService) RenameLabel(ctx context.Context, id uuid.UUID, ownerID, name string) (*model.Label, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if name == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	var label model.Label
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUniqueName(tx, ownerID, name, id); err != nil {
			return err
		}
		result := tx.Model(&model.Label{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Update("name", name)
		if result.Error != nil {
			return apperrors.NewStoreError("failed to rename label", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("label")
		}
		if err := tx.First(&label, "id = ?", id).Error; err != nil {
			return apperrors.NewStoreError("failed to rename label", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// DeleteLabel removes an owned label together with its assignments
func (s *LabelService) DeleteLabel(ctx context.Context, id uuid.UUID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[model.Label](tx, id, ownerID, "label"); err != nil {
			return err
		}
		if err := tx.Where("label_id = ?", id).Delete(&model.RecipeLabel{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete label", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&model.Label{}).Error; err != nil {
			return apperrors.NewStoreError("failed to delete label", err)
		}
		return nil
	})
}

// AttachLabel assigns a label to a recipe. Attaching twice is a no-op.
func (s *LabelService) AttachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[model.Recipe](tx, recipeID, ownerID, "recipe"); err != nil {
			return err
		}
		if _, err := findOwned[model.Label](tx, labelID, ownerID, "label"); err != nil {
			return err
		}

		assignment := model.RecipeLabel{RecipeID: recipeID, LabelID: labelID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment).Error; err != nil {
			return apperrors.NewStoreError("failed to attach label", err)
		}
		return nil
	})
}

// DetachLabel removes a label from a recipe
func (s *LabelService) DetachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findOwned[model.Recipe](tx, recipeID, ownerID, "recipe"); err != nil {
			return err
		}
		result := tx.Where("recipe_id = ? AND label_id = ?", recipeID, labelID).Delete(&model.RecipeLabel{})
		if result.Error != nil {
			return apperrors.NewStoreError("failed to detach label", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("label assignment")
		}
		return nil
	})
}

// LabelsForRecipe returns the labels attached to an owned recipe
func (s *LabelService) LabelsForRecipe(ctx context.Context, recipeID uuid.UUID, ownerID string) ([]LabelRef, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	if _, err := findOwned[model.Recipe](s.db.WithContext(ctx), recipeID, ownerID, "recipe"); err != nil {
		return nil, err
	}

	byRecipe, err := s.labelsByRecipe(ctx, []uuid.UUID{recipeID})
	if err != nil {
		return nil, err
	}
	labels := byRecipe[recipeID]
	if labels == nil {
		labels = []LabelRef{}
	}
	return labels, nil
}

// labelsByRecipe loads the assignments of the given recipes in one query
func (s *LabelService) labelsByRecipe(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]LabelRef, error) {
	out := make(map[uuid.UUID][]LabelRef, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		RecipeID uuid.UUID
		ID       uuid.UUID
		Name     string
	}
	err := s.db.WithContext(ctx).
		Table("recipe_labels").
		Select("recipe_labels.recipe_id, labels.id, labels.name").
		Joins("JOIN labels ON labels.id = recipe_labels.label_id").
		Where("recipe_labels.recipe_id IN ?", recipeIDs).
		Order("labels.created_at ASC, labels.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.NewStoreError("failed to load recipe labels", err)
	}

	for _, row := range rows {
		out[row.RecipeID] = append(out[row.RecipeID], LabelRef{ID: row.ID, Name: row.Name})
	}
	return out, nil
}

func (s *LabelService) checkUniqueName(tx *gorm.DB, ownerID, name string, except uuid.UUID) error {
	if !s.uniqueNames {
		return nil
	}
	var count int64
	if err := tx.Model(&model.Label{}).
		Where("user_id = ? AND name = ? AND id <> ?", ownerID, name, except).
		Count(&count).Error; err != nil {
		return apperrors.NewStoreError("failed to check label name", err)
	}
	if count > 0 {
		return apperrors.NewValidationError("a label named %q already exists", name)
	}
	return nil
}

// findOwned loads a row by id and owner, mapping a miss to NotFound
func findOwned[T any](tx *gorm.DB, id uuid.UUID, ownerID, resource string) (*T, error) {
	var row T
	if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError(resource)
		}
		return nil, apperrors.NewStoreError("failed to fetch "+resource, err)
	}
	return &row, nil
}
