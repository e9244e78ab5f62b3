package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/testhelpers"
)

func TestLabelServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewLabelService(testhelpers.NewSQLiteDB(t), false)

	t.Run("should create and list labels in creation order", func(t *testing.T) {
		_, err := svc.CreateLabel(ctx, "owner", " Quick ")
		require.NoError(t, err)
		_, err = svc.CreateLabel(ctx, "owner", "Cheap")
		require.NoError(t, err)
		_, err = svc.CreateLabel(ctx, "other", "Hidden")
		require.NoError(t, err)

		labels, err := svc.ListLabels(ctx, "owner")
		require.NoError(t, err)
		require.Len(t, labels, 2)
		assert.Equal(t, "Quick", labels[0].Name)
		assert.Equal(t, "Cheap", labels[1].Name)
	})

	t.Run("should allow duplicate names by default", func(t *testing.T) {
		_, err := svc.CreateLabel(ctx, "owner", "Quick")
		assert.NoError(t, err)
	})

	t.Run("should reject a blank name", func(t *testing.T) {
		_, err := svc.CreateLabel(ctx, "owner", "  ")
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("should rename only owned labels", func(t *testing.T) {
		label, err := svc.CreateLabel(ctx, "owner", "Old")
		require.NoError(t, err)

		_, err = svc.RenameLabel(ctx, label.ID, "intruder", "New")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		renamed, err := svc.RenameLabel(ctx, label.ID, "owner", "New")
		require.NoError(t, err)
		assert.Equal(t, "New", renamed.Name)
	})

	t.Run("should return not found when deleting a missing label", func(t *testing.T) {
		err := svc.DeleteLabel(ctx, uuid.New(), "owner")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

func TestLabelServiceUniqueNames(t *testing.T) {
	ctx := context.Background()
	svc := NewLabelService(testhelpers.NewSQLiteDB(t), true)

	first, err := svc.CreateLabel(ctx, "owner", "Quick")
	require.NoError(t, err)

	_, err = svc.CreateLabel(ctx, "owner", "Quick")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.CreateLabel(ctx, "other", "Quick")
	assert.NoError(t, err, "names are unique per owner")

	second, err := svc.CreateLabel(ctx, "owner", "Slow")
	require.NoError(t, err)
	_, err = svc.RenameLabel(ctx, second.ID, "owner", "Quick")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.RenameLabel(ctx, first.ID, "owner", "Quick")
	assert.NoError(t, err, "renaming a label to its own name is allowed")
}

func TestLabelServiceAssignments(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.NewSQLiteDB(t)
	recipes := NewRecipeService(db)
	labels := NewLabelService(db, false)

	recipe, err := recipes.CreateRecipe(ctx, "owner", "Curry", "body", nil)
	require.NoError(t, err)
	label, err := labels.CreateLabel(ctx, "owner", "Quick")
	require.NoError(t, err)
	foreign, err := labels.CreateLabel(ctx, "other", "Theirs")
	require.NoError(t, err)

	t.Run("should attach idempotently", func(t *testing.T) {
		require.NoError(t, labels.AttachLabel(ctx, recipe.ID, label.ID, "owner"))
		require.NoError(t, labels.AttachLabel(ctx, recipe.ID, label.ID, "owner"))

		attached, err := labels.LabelsForRecipe(ctx, recipe.ID, "owner")
		require.NoError(t, err)
		assert.Equal(t, []LabelRef{{ID: label.ID, Name: "Quick"}}, attached)
	})

	t.Run("should refuse labels owned by someone else", func(t *testing.T) {
		err := labels.AttachLabel(ctx, recipe.ID, foreign.ID, "owner")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		err = labels.AttachLabel(ctx, recipe.ID, foreign.ID, "other")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("should detach and report a missing assignment", func(t *testing.T) {
		require.NoError(t, labels.DetachLabel(ctx, recipe.ID, label.ID, "owner"))

		err := labels.DetachLabel(ctx, recipe.ID, label.ID, "owner")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		attached, err := labels.LabelsForRecipe(ctx, recipe.ID, "owner")
		require.NoError(t, err)
		assert.Empty(t, attached)
	})

	t.Run("should remove assignments with the label", func(t *testing.T) {
		require.NoError(t, labels.AttachLabel(ctx, recipe.ID, label.ID, "owner"))
		require.NoError(t, labels.DeleteLabel(ctx, label.ID, "owner"))

		var count int64
		require.NoError(t, db.Model(&model.RecipeLabel{}).Where("label_id = ?", label.ID).Count(&count).Error)
		assert.Zero(t, count)

		_, err := recipes.GetRecipe(ctx, recipe.ID, "owner")
		assert.NoError(t, err, "the recipe survives its label")
	})
}
