package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/mocks"
	"github.com/pageza/kodawari/backend/internal/service"
)

func newGenerateRouter(completion *mocks.MockCompletionClient, production bool, limit ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewGenerateHandler(completion, zap.NewNop(), production).RegisterRoutes(r.Group("/api/v1"), limit...)
	return r
}

func themed(slug string) any {
	return mock.MatchedBy(func(p service.Prompt) bool { return p.Theme == slug })
}

func TestGenerateBuffered(t *testing.T) {
	t.Run("should return the whole recipe for a buffered theme", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		completion.On("Complete", mock.Anything, mock.MatchedBy(func(p service.Prompt) bool {
			return p.Theme == "japanese" && strings.Contains(p.User, "tofu") && p.MaxTokens == 1300
		})).Return("### Recipe Name: Agedashi tofu\n...", nil)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate/japanese", map[string]any{
			"preferredIngredients": "tofu",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "### Recipe Name: Agedashi tofu\n...", decode(t, w)["recipe"])
		completion.AssertExpectations(t)
	})

	t.Run("should accept an empty body", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		completion.On("Complete", mock.Anything, themed("kids")).Return("recipe", nil)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate/kids", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should buffer a streaming theme when asked", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		completion.On("Complete", mock.Anything, themed(service.DefaultTheme)).Return("recipe", nil)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate?stream=false", map[string]any{})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "recipe", decode(t, w)["recipe"])
		completion.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything)
	})

	t.Run("should reject an unknown theme without calling the model", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate/unknown", map[string]any{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		completion.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("should reject a body that is not an object", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate/kids", `["tofu"]`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body must be a JSON object", decode(t, w)["error"])
	})

	t.Run("should hide completion failures in production", func(t *testing.T) {
		completion := new(mocks.MockCompletionClient)
		completion.On("Complete", mock.Anything, themed("sweet")).
			Return("", apperrors.NewExternalServiceError("completion failed", errors.New("upstream 502")))

		w := perform(t, newGenerateRouter(completion, false), http.MethodPost, "/api/v1/recipe-generate/sweet", map[string]any{})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "completion failed", decode(t, w)["error"])

		w = perform(t, newGenerateRouter(completion, true), http.MethodPost, "/api/v1/recipe-generate/sweet", map[string]any{})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, genericErrorMessage, decode(t, w)["error"])
	})
}

func TestGenerateStream(t *testing.T) {
	t.Run("should stream fragments in order for the default theme", func(t *testing.T) {
		completion := &mocks.MockCompletionClient{Fragments: []string{"### Recipe", " Name: Curry", "\nStep 1"}}
		completion.On("Stream", mock.Anything, themed(service.DefaultTheme)).Return(nil)
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate", map[string]any{"mood": "tired"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
		assert.Equal(t,
			`data: {"content":"### Recipe"}`+"\n\n"+
				`data: {"content":" Name: Curry"}`+"\n\n"+
				`data: {"content":"\nStep 1"}`+"\n\n",
			w.Body.String())
		assert.True(t, w.Flushed)
	})

	t.Run("should stream a buffered theme when the client accepts events", func(t *testing.T) {
		completion := &mocks.MockCompletionClient{Fragments: []string{"a"}}
		completion.On("Stream", mock.Anything, themed("bistro")).Return(nil)
		r := newGenerateRouter(completion, false)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe-generate/bistro", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, `data: {"content":"a"}`+"\n\n", w.Body.String())
	})

	t.Run("should end with an error event when the upstream fails", func(t *testing.T) {
		completion := &mocks.MockCompletionClient{Fragments: []string{"partial"}}
		completion.On("Stream", mock.Anything, themed(service.DefaultTheme)).
			Return(apperrors.NewExternalServiceError("completion failed", errors.New("connection reset")))
		r := newGenerateRouter(completion, false)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate", map[string]any{})

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		require.True(t, strings.HasPrefix(body, `data: {"content":"partial"}`+"\n\n"))
		assert.True(t, strings.HasSuffix(body, "event: error\n"+`data: {"error":"completion failed"}`+"\n\n"))
		assert.NotContains(t, body, "connection reset")
	})
}

func TestGenerateRoutes(t *testing.T) {
	t.Run("should answer other methods with 405 and Allow", func(t *testing.T) {
		r := newGenerateRouter(new(mocks.MockCompletionClient), false)

		for _, path := range []string{"/api/v1/recipe-generate", "/api/v1/recipe-generate/japanese"} {
			w := perform(t, r, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
			assert.Equal(t, "POST", w.Header().Get("Allow"), path)
			assert.Equal(t, "method GET not allowed", decode(t, w)["error"])
		}

		w := perform(t, r, http.MethodDelete, "/api/v1/themes", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, "GET", w.Header().Get("Allow"))
	})

	t.Run("should run the limiter on generation only", func(t *testing.T) {
		limit := func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		}
		r := newGenerateRouter(new(mocks.MockCompletionClient), false, limit)

		w := perform(t, r, http.MethodPost, "/api/v1/recipe-generate/kids", map[string]any{})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		w = perform(t, r, http.MethodGet, "/api/v1/themes", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should list every theme", func(t *testing.T) {
		r := newGenerateRouter(new(mocks.MockCompletionClient), false)

		w := perform(t, r, http.MethodGet, "/api/v1/themes", nil)

		require.Equal(t, http.StatusOK, w.Code)
		themes, ok := decode(t, w)["themes"].([]any)
		require.True(t, ok)
		assert.Len(t, themes, len(service.Themes()))
		first := themes[0].(map[string]any)
		assert.Contains(t, first, "slug")
		assert.Contains(t, first, "fields")
		assert.NotContains(t, first, "Persona")
	})
}
