package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/apperrors"
)

func newTestCompletionClient(url string) *OpenAIClient {
	return NewOpenAIClient(&config.Config{
		CompletionAPIURL: url,
		CompletionAPIKey: "sk-test",
		CompletionModel:  "gpt-4o-mini",
	}, zap.NewNop())
}

func writeStream(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	flusher := w.(http.Flusher)
	for _, c := range chunks {
		fmt.Fprintf(w, "data: %s\n\n", c)
		flusher.Flush()
	}
}

func delta(content string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, content)
}

func TestOpenAIClientComplete(t *testing.T) {
	t.Run("should send the prompt and return the first choice", func(t *testing.T) {
		var got Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"### Recipe Name: Curry"}}]}`)
		}))
		defer srv.Close()

		p, err := BuildPrompt("diet", Preferences{"dietFlavor": "light"})
		require.NoError(t, err)

		text, err := newTestCompletionClient(srv.URL).Complete(context.Background(), p)
		require.NoError(t, err)

		assert.Equal(t, "### Recipe Name: Curry", text)
		assert.Equal(t, "gpt-4o-mini", got.Model)
		assert.Equal(t, 1400, got.MaxTokens)
		assert.False(t, got.Stream)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "user", got.Messages[1].Role)
		assert.Contains(t, got.Messages[1].Content, "- Seasoning: light")
	})

	t.Run("should map upstream failures to external service errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := newTestCompletionClient(srv.URL).Complete(context.Background(), Prompt{Theme: "standard"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeExternalService))
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("should fail on an empty choice list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		defer srv.Close()

		_, err := newTestCompletionClient(srv.URL).Complete(context.Background(), Prompt{Theme: "standard"})
		assert.True(t, apperrors.Is(err, apperrors.CodeExternalService))
	})
}

func TestOpenAIClientStream(t *testing.T) {
	t.Run("should forward fragments in upstream order", func(t *testing.T) {
		var got Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeStream(w,
				`{"choices":[{"delta":{"role":"assistant"}}]}`,
				delta("A"), delta(""), delta("B"), delta("C"),
				"[DONE]",
			)
		}))
		defer srv.Close()

		var fragments []string
		err := newTestCompletionClient(srv.URL).Stream(context.Background(), Prompt{Theme: "standard"}, func(s string) error {
			fragments = append(fragments, s)
			return nil
		})
		require.NoError(t, err)

		assert.True(t, got.Stream)
		assert.Equal(t, []string{"A", "B", "C"}, fragments)
	})

	t.Run("should end cleanly when upstream closes without a terminator", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeStream(w, delta("only"))
		}))
		defer srv.Close()

		var fragments []string
		err := newTestCompletionClient(srv.URL).Stream(context.Background(), Prompt{}, func(s string) error {
			fragments = append(fragments, s)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, fragments)
	})

	t.Run("should surface an in-band upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeStream(w, delta("A"), `{"error":{"message":"overloaded"}}`)
		}))
		defer srv.Close()

		err := newTestCompletionClient(srv.URL).Stream(context.Background(), Prompt{}, func(string) error { return nil })
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeExternalService))
	})

	t.Run("should abort the upstream request when the caller goes away", func(t *testing.T) {
		upstreamDone := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeStream(w, delta("A"))
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			close(upstreamDone)
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		err := newTestCompletionClient(srv.URL).Stream(ctx, Prompt{}, func(string) error {
			cancel()
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)

		select {
		case <-upstreamDone:
		case <-time.After(3 * time.Second):
			t.Fatal("upstream request was not cancelled")
		}
	})
}
