package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
	"github.com/pageza/kodawari/backend/internal/types"
)

// LabelHandler serves labels and their assignment to recipes
type LabelHandler struct {
	responder
	labels service.ILabelService
}

// NewLabelHandler creates a new LabelHandler instance
func NewLabelHandler(labels service.ILabelService, log *zap.Logger, production bool) *LabelHandler {
	return &LabelHandler{
		responder: responder{log: log, production: production},
		labels:    labels,
	}
}

func (h *LabelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handle(rg, "/labels", methods{
		http.MethodGet:  {h.ListLabels},
		http.MethodPost: {h.CreateLabel},
	})
	handle(rg, "/labels/:id", methods{
		http.MethodPatch:  {h.RenameLabel},
		http.MethodDelete: {h.DeleteLabel},
	})
	handle(rg, "/recipes/:id/labels", methods{
		http.MethodGet:    {h.RecipeLabels},
		http.MethodPost:   {h.AttachLabel},
		http.MethodDelete: {h.DetachLabel},
	})
	handle(rg, "/recipes/:id/labels/:labelId", methods{http.MethodDelete: {h.DetachLabelByPath}})
}

func (h *LabelHandler) ListLabels(c *gin.Context) {
	ownerID := strings.TrimSpace(c.Query("user_id"))
	if ownerID == "" {
		h.respondError(c, apperrors.NewValidationError("user_id is required"))
		return
	}

	labels, err := h.labels.ListLabels(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if labels == nil {
		labels = []model.Label{}
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var req types.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	label, err := h.labels.CreateLabel(c.Request.Context(), req.UserID, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"label": label})
}

func (h *LabelHandler) RenameLabel(c *gin.Context) {
	id, err := pathUUID(c, "id", "label")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req types.RenameLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	label, err := h.labels.RenameLabel(c.Request.Context(), id, req.UserID, req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"label": label})
}

func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	id, err := pathUUID(c, "id", "label")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ownerID, err := ownerFromRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.labels.DeleteLabel(c.Request.Context(), id, ownerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "label deleted"})
}

// RecipeLabels lists the labels attached to one recipe
func (h *LabelHandler) RecipeLabels(c *gin.Context) {
	recipeID, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ownerID := strings.TrimSpace(c.Query("user_id"))
	if ownerID == "" {
		h.respondError(c, apperrors.NewValidationError("user_id is required"))
		return
	}

	labels, err := h.labels.LabelsForRecipe(c.Request.Context(), recipeID, ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if labels == nil {
		labels = []service.LabelRef{}
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

// AttachLabel assigns a label to a recipe. Repeating it is a no-op.
func (h *LabelHandler) AttachLabel(c *gin.Context) {
	recipeID, labelID, ownerID, ok := h.assignment(c)
	if !ok {
		return
	}

	if err := h.labels.AttachLabel(c.Request.Context(), recipeID, labelID, ownerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "label assigned to recipe"})
}

func (h *LabelHandler) DetachLabel(c *gin.Context) {
	recipeID, labelID, ownerID, ok := h.assignment(c)
	if !ok {
		return
	}
	h.detach(c, recipeID, labelID, ownerID)
}

func (h *LabelHandler) DetachLabelByPath(c *gin.Context) {
	recipeID, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return
	}
	labelID, err := pathUUID(c, "labelId", "label")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ownerID, err := ownerFromRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.detach(c, recipeID, labelID, ownerID)
}

func (h *LabelHandler) detach(c *gin.Context, recipeID, labelID uuid.UUID, ownerID string) {
	if err := h.labels.DetachLabel(c.Request.Context(), recipeID, labelID, ownerID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "label removed from recipe"})
}

func (h *LabelHandler) assignment(c *gin.Context) (uuid.UUID, uuid.UUID, string, bool) {
	recipeID, err := pathUUID(c, "id", "recipe")
	if err != nil {
		h.respondError(c, err)
		return uuid.Nil, uuid.Nil, "", false
	}
	var req types.LabelAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return uuid.Nil, uuid.Nil, "", false
	}
	labelID, err := uuid.Parse(req.LabelID)
	if err != nil {
		h.respondError(c, apperrors.NewValidationError("invalid label id"))
		return uuid.Nil, uuid.Nil, "", false
	}
	return recipeID, labelID, req.UserID, true
}
