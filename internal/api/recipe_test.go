package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/mocks"
	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
)

func newRecipeTestHandler() (*RecipeHandler, *mocks.MockRecipeService, *mocks.MockLibraryService) {
	recipes := new(mocks.MockRecipeService)
	library := new(mocks.MockLibraryService)
	return NewRecipeHandler(recipes, library, zap.NewNop(), false), recipes, library
}

func TestSaveRecipe(t *testing.T) {
	t.Run("should take a blank title from the recipe text", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		body := "### Recipe Name: Miso soup\n1. Boil water"
		saved := &model.Recipe{ID: uuid.New(), UserID: "user-1", Title: "Miso soup", Content: body}
		recipes.On("CreateRecipe", mock.Anything, "user-1", "Miso soup", body, mock.Anything).Return(saved, nil)

		w := perform(t, newTestRouter(h), http.MethodPost, "/api/v1/save-recipe", map[string]any{
			"user_id":  "user-1",
			"title":    "  ",
			"recipe":   body,
			"formData": map[string]any{"mood": "calm"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "recipe saved", resp["message"])
		assert.Equal(t, "Miso soup", resp["recipe"].(map[string]any)["title"])
		recipes.AssertExpectations(t)
	})

	t.Run("should keep an explicit title", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("CreateRecipe", mock.Anything, "user-1", "Dinner", "text", mock.Anything).
			Return(&model.Recipe{ID: uuid.New(), Title: "Dinner"}, nil)

		w := perform(t, newTestRouter(h), http.MethodPost, "/api/v1/save-recipe", map[string]any{
			"user_id": "user-1", "title": "Dinner", "recipe": "text",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		recipes.AssertExpectations(t)
	})

	t.Run("should require the owner and the recipe", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()

		w := perform(t, newTestRouter(h), http.MethodPost, "/api/v1/save-recipe", map[string]any{"title": "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := decode(t, w)["error"].(string)
		assert.Contains(t, msg, "user_id is required")
		assert.Contains(t, msg, "recipe is required")
		recipes.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListRecipes(t *testing.T) {
	t.Run("should parse the listing query", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("ListRecipes", mock.Anything, "user-1", mock.MatchedBy(func(o service.ListOptions) bool {
			return o.LabelID == nil && o.Limit == 10 && o.Offset == 20 && o.SortField == "title" && o.SortOrder == "asc"
		})).Return([]service.RecipeSummary{{ID: uuid.New(), Title: "Curry", CreatedAt: time.Now()}}, nil)

		w := perform(t, newTestRouter(h), http.MethodGet,
			"/api/v1/recipes?user_id=user-1&label_id=null&limit=10&offset=20&sortField=title&sortOrder=asc", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["recipes"], 1)
		recipes.AssertExpectations(t)
	})

	t.Run("should return an empty list rather than null", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("ListRecipes", mock.Anything, "user-1", mock.Anything).Return(nil, nil)

		w := perform(t, newTestRouter(h), http.MethodGet, "/api/v1/recipes?user_id=user-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"recipes":[]}`, w.Body.String())
	})

	t.Run("should reject bad query values", func(t *testing.T) {
		h, _, _ := newRecipeTestHandler()
		r := newTestRouter(h)

		w := perform(t, r, http.MethodGet, "/api/v1/recipes", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "user_id is required", decode(t, w)["error"])

		w = perform(t, r, http.MethodGet, "/api/v1/recipes?user_id=u&limit=ten", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = perform(t, r, http.MethodGet, "/api/v1/recipes?user_id=u&sortField=password", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should combine labels and recipes", func(t *testing.T) {
		h, _, library := newRecipeTestHandler()
		labelID := uuid.New()
		library.On("RecipesWithLabels", mock.Anything, "user-1", mock.MatchedBy(func(o service.ListOptions) bool {
			return o.LabelID != nil && *o.LabelID == labelID
		})).Return(&service.Library{
			Labels: []model.Label{{ID: labelID, Name: "Quick"}},
			Recipes: []service.RecipeSummary{{
				ID: uuid.New(), Title: "Curry", Labels: []service.LabelRef{{ID: labelID, Name: "Quick"}},
			}},
		}, nil)

		w := perform(t, newTestRouter(h), http.MethodGet, "/api/v1/recipes-with-labels?user_id=user-1&label_id="+labelID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Len(t, resp["labels"], 1)
		recipe := resp["recipes"].([]any)[0].(map[string]any)
		assert.Equal(t, "Quick", recipe["labels"].([]any)[0].(map[string]any)["name"])
	})
}

func TestRecipeByID(t *testing.T) {
	id := uuid.New()
	path := "/api/v1/recipes/" + id.String()

	t.Run("should read with an optional owner", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("GetRecipe", mock.Anything, id, "").Return(&model.Recipe{ID: id, Title: "Curry"}, nil)
		recipes.On("GetRecipe", mock.Anything, id, "other").Return(nil, apperrors.NewNotFoundError("recipe"))
		r := newTestRouter(h)

		w := perform(t, r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Curry", decode(t, w)["recipe"].(map[string]any)["title"])

		w = perform(t, r, http.MethodGet, path+"?user_id=other", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "recipe not found", decode(t, w)["error"])
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		h, _, _ := newRecipeTestHandler()

		w := perform(t, newTestRouter(h), http.MethodGet, "/api/v1/recipes/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid recipe id", decode(t, w)["error"])
	})

	t.Run("should rename for the owner", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("RenameRecipe", mock.Anything, id, "user-1", "Better curry").
			Return(&model.Recipe{ID: id, Title: "Better curry"}, nil)

		w := perform(t, newTestRouter(h), http.MethodPatch, path, map[string]any{"user_id": "user-1", "title": "Better curry"})

		assert.Equal(t, http.StatusOK, w.Code)
		recipes.AssertExpectations(t)
	})

	t.Run("should delete with the owner from the body or the query", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("DeleteRecipe", mock.Anything, id, "user-1").Return(nil)
		r := newTestRouter(h)

		w := perform(t, r, http.MethodDelete, path, map[string]any{"user_id": "user-1"})
		assert.Equal(t, http.StatusOK, w.Code)

		w = perform(t, r, http.MethodDelete, path+"?user_id=user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		recipes.AssertNumberOfCalls(t, "DeleteRecipe", 2)
	})

	t.Run("should not delete without an owner", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()

		w := perform(t, newTestRouter(h), http.MethodDelete, path, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "user_id is required", decode(t, w)["error"])
		recipes.AssertNotCalled(t, "DeleteRecipe", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should report a foreign recipe as not found", func(t *testing.T) {
		h, recipes, _ := newRecipeTestHandler()
		recipes.On("DeleteRecipe", mock.Anything, id, "intruder").Return(apperrors.NewNotFoundError("recipe"))

		w := perform(t, newTestRouter(h), http.MethodDelete, path, map[string]any{"user_id": "intruder"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should answer other methods with 405 and Allow", func(t *testing.T) {
		h, _, _ := newRecipeTestHandler()
		r := newTestRouter(h)

		w := perform(t, r, http.MethodPut, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "DELETE, GET, PATCH", w.Header().Get("Allow"))

		w = perform(t, r, http.MethodGet, "/api/v1/save-recipe", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "POST", w.Header().Get("Allow"))

		w = perform(t, r, http.MethodPost, "/api/v1/recipes-with-labels", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET", w.Header().Get("Allow"))
	})
}
