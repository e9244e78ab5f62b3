package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/service"
	"github.com/pageza/kodawari/backend/internal/types"
)

// RecipeHandler serves saved recipes
type RecipeHandler struct {
	responder
	recipes service.IRecipeService
	library service.ILibraryService
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(recipes service.IRecipeService, library service.ILibraryService, log *zap.Logger, production bool) *RecipeHandler {
	return &RecipeHandler{
		responder: responder{log: log, production: production},
		recipes:   recipes,
		library:   library,
	}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handle(rg, "/save-recipe", methods{http.MethodPost: {h.SaveRecipe}})
	handle(rg, "/recipes", methods{http.MethodGet: {h.ListRecipes}})
	handle(rg, "/recipes-with-labels", methods{http.MethodGet: {h.RecipesWithLabels}})
	handle(rg, "/recipes/:id", methods{
		http.MethodGet:    {h.GetRecipe},
		http.MethodPatch:  {h.RenameRecipe},
		http.MethodDelete: {h.DeleteRecipe},
	})
}

// SaveRecipe stores a generated recipe. A blank title is taken from the
// recipe's title line.
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	var req types.SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = service.ExtractTitle(req.Recipe)
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), req.UserID, title, req.Recipe, req.FormData)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe saved", "recipe": recipe})
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	ownerID, opts, ok := h.listQuery(c)
	if !ok {
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), ownerID, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if recipes == nil {
		recipes = []service.RecipeSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// RecipesWithLabels returns the label catalogue and the labelled recipe list
func (h *RecipeHandler) RecipesWithLabels(c *gin.Context) {
	ownerID, opts, ok := h.listQuery(c)
	if !ok {
		return
	}

	lib, err := h.library.RecipesWithLabels(c.Request.Context(), ownerID, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lib)
}

func (h *RecipeHandler) listQuery(c *gin.Context) (string, service.ListOptions, bool) {
	var q types.ListRecipesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondError(c, bindError(err))
		return "", service.ListOptions{}, false
	}
	opts, err := service.ParseListOptions(q.LabelID, q.Limit, q.Offset, q.SortField, q.SortOrder)
	if err != nil {
		h.respondError(c, err)
		return "", service.ListOptions{}, false
	}
	return q.UserID, opts, true
}

// GetRecipe returns one recipe. user_id is optional; when present the
// recipe must belong to that user.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id, strings.TrimSpace(c.Query("user_id")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) RenameRecipe(c *gin.Context) {
	id, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req types.RenameRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	recipe, err := h.recipes.RenameRecipe(c.Request.Context(), id, req.UserID, req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ownerID, err := ownerFromRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, ownerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "recipe deleted"})
}

func pathUUID(c *gin.Context, param, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("invalid %s id", resource)
	}
	return id, nil
}

// ownerFromRequest reads user_id from the query string or, for clients that
// send a body with DELETE, from the JSON body
func ownerFromRequest(c *gin.Context) (string, error) {
	if id := strings.TrimSpace(c.Query("user_id")); id != "" {
		return id, nil
	}

	var req types.OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", apperrors.NewValidationError("invalid request body")
	}
	if id := strings.TrimSpace(req.UserID); id != "" {
		return id, nil
	}
	return "", apperrors.NewValidationError("user_id is required")
}
