package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/service"
)

type contentEvent struct {
	Content string `json:"content"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// GenerateHandler turns themed preference forms into generated recipes
type GenerateHandler struct {
	responder
	completion service.CompletionClient
}

// NewGenerateHandler creates a new GenerateHandler instance
func NewGenerateHandler(completion service.CompletionClient, log *zap.Logger, production bool) *GenerateHandler {
	return &GenerateHandler{
		responder:  responder{log: log, production: production},
		completion: completion,
	}
}

// RegisterRoutes registers the generation routes. limit runs in front of
// the generation endpoints only.
func (h *GenerateHandler) RegisterRoutes(rg *gin.RouterGroup, limit ...gin.HandlerFunc) {
	handle(rg, "/recipe-generate", methods{http.MethodPost: chain(limit, h.Generate)})
	handle(rg, "/recipe-generate/:theme", methods{http.MethodPost: chain(limit, h.Generate)})
	handle(rg, "/themes", methods{http.MethodGet: {h.ListThemes}})
}

// Generate builds the prompt for the requested theme and answers with the
// whole recipe or an SSE stream of fragments
func (h *GenerateHandler) Generate(c *gin.Context) {
	slug := c.Param("theme")
	if slug == "" {
		slug = service.DefaultTheme
	}

	prefs := service.Preferences{}
	if err := c.ShouldBindJSON(&prefs); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(c, apperrors.NewValidationError("request body must be a JSON object"))
		return
	}

	prompt, err := service.BuildPrompt(slug, prefs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if wantsStream(c, prompt.Stream) {
		h.stream(c, prompt)
		return
	}

	text, err := h.completion.Complete(c.Request.Context(), prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": text})
}

// ListThemes returns the theme catalogue used to render the forms
func (h *GenerateHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": service.Themes()})
}

// wantsStream fixes the response mode before anything is written
func wantsStream(c *gin.Context, themeDefault bool) bool {
	if v := c.Query("stream"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	return themeDefault
}

func (h *GenerateHandler) stream(c *gin.Context, p service.Prompt) {
	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ctx := c.Request.Context()
	err := h.completion.Stream(ctx, p, func(fragment string) error {
		return writeEvent(c.Writer, "", contentEvent{Content: fragment})
	})
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		h.log.Info("client went away during stream", zap.String("theme", p.Theme))
		return
	}

	h.log.Error("recipe stream failed", zap.String("theme", p.Theme), zap.Error(err))
	_, msg := h.publicError(err)
	if werr := writeEvent(c.Writer, "error", errorEvent{Error: msg}); werr != nil {
		h.log.Warn("failed to write stream error event", zap.Error(werr))
	}
}

func writeEvent(w gin.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
