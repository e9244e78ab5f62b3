package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/mocks"
	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
)

func newLabelTestHandler() (*LabelHandler, *mocks.MockLabelService) {
	labels := new(mocks.MockLabelService)
	return NewLabelHandler(labels, zap.NewNop(), false), labels
}

func TestLabels(t *testing.T) {
	labelID := uuid.New()

	t.Run("should list the owner's labels", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("ListLabels", mock.Anything, "user-1").Return([]model.Label{{ID: labelID, Name: "Quick"}}, nil)
		r := newTestRouter(h)

		w := perform(t, r, http.MethodGet, "/api/v1/labels?user_id=user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["labels"], 1)

		w = perform(t, r, http.MethodGet, "/api/v1/labels", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should create a label", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("CreateLabel", mock.Anything, "user-1", "Quick").Return(&model.Label{ID: labelID, Name: "Quick"}, nil)

		w := perform(t, newTestRouter(h), http.MethodPost, "/api/v1/labels", map[string]any{"user_id": "user-1", "name": "Quick"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Quick", decode(t, w)["label"].(map[string]any)["name"])
	})

	t.Run("should pass through a duplicate name rejection", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("CreateLabel", mock.Anything, "user-1", "Quick").
			Return(nil, apperrors.NewValidationError("a label named %q already exists", "Quick"))

		w := perform(t, newTestRouter(h), http.MethodPost, "/api/v1/labels", map[string]any{"user_id": "user-1", "name": "Quick"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should rename and delete by id", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("RenameLabel", mock.Anything, labelID, "user-1", "Fast").Return(&model.Label{ID: labelID, Name: "Fast"}, nil)
		labels.On("DeleteLabel", mock.Anything, labelID, "user-1").Return(nil)
		r := newTestRouter(h)
		path := "/api/v1/labels/" + labelID.String()

		w := perform(t, r, http.MethodPatch, path, map[string]any{"user_id": "user-1", "name": "Fast"})
		assert.Equal(t, http.StatusOK, w.Code)

		w = perform(t, r, http.MethodDelete, path+"?user_id=user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "label deleted", decode(t, w)["message"])

		w = perform(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE, PATCH", w.Header().Get("Allow"))
		labels.AssertExpectations(t)
	})
}

func TestRecipeLabels(t *testing.T) {
	recipeID := uuid.New()
	labelID := uuid.New()
	base := "/api/v1/recipes/" + recipeID.String() + "/labels"

	t.Run("should list a recipe's labels", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("LabelsForRecipe", mock.Anything, recipeID, "user-1").
			Return([]service.LabelRef{{ID: labelID, Name: "Quick"}}, nil)

		w := perform(t, newTestRouter(h), http.MethodGet, base+"?user_id=user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["labels"], 1)
	})

	t.Run("should attach and detach through the body", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("AttachLabel", mock.Anything, recipeID, labelID, "user-1").Return(nil)
		labels.On("DetachLabel", mock.Anything, recipeID, labelID, "user-1").Return(nil)
		r := newTestRouter(h)
		body := map[string]any{"user_id": "user-1", "label_id": labelID.String()}

		w := perform(t, r, http.MethodPost, base, body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "label assigned to recipe", decode(t, w)["message"])

		w = perform(t, r, http.MethodDelete, base, body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "label removed from recipe", decode(t, w)["message"])
		labels.AssertExpectations(t)
	})

	t.Run("should detach through the path", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("DetachLabel", mock.Anything, recipeID, labelID, "user-1").Return(apperrors.NewNotFoundError("label assignment"))

		w := perform(t, newTestRouter(h), http.MethodDelete, base+"/"+labelID.String()+"?user_id=user-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "label assignment not found", decode(t, w)["error"])
	})

	t.Run("should validate the assignment body", func(t *testing.T) {
		h, labels := newLabelTestHandler()

		w := perform(t, newTestRouter(h), http.MethodPost, base, map[string]any{"user_id": "user-1", "label_id": "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid label id", decode(t, w)["error"])
		labels.AssertNotCalled(t, "AttachLabel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should accept upper case ids like the path does", func(t *testing.T) {
		h, labels := newLabelTestHandler()
		labels.On("AttachLabel", mock.Anything, recipeID, labelID, "user-1").Return(nil)
		upperBase := "/api/v1/recipes/" + strings.ToUpper(recipeID.String()) + "/labels"
		body := map[string]any{"user_id": "user-1", "label_id": strings.ToUpper(labelID.String())}

		w := perform(t, newTestRouter(h), http.MethodPost, upperBase, body)

		assert.Equal(t, http.StatusOK, w.Code)
		labels.AssertExpectations(t)
	})

	t.Run("should answer other methods with 405 and Allow", func(t *testing.T) {
		h, _ := newLabelTestHandler()
		r := newTestRouter(h)

		w := perform(t, r, http.MethodPut, base, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE, GET, POST", w.Header().Get("Allow"))

		w = perform(t, r, http.MethodGet, base+"/"+labelID.String(), nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE", w.Header().Get("Allow"))
	})
}
