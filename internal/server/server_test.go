package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
)

func TestRun(t *testing.T) {
	t.Run("should shut down when the context ends", func(t *testing.T) {
		cfg := &config.Config{ServerHost: "127.0.0.1", ServerPort: "0"}
		srv := New(cfg, http.NotFoundHandler(), zap.NewNop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(ShutdownTimeout):
			t.Fatal("server did not shut down")
		}
	})

	t.Run("should return listen errors", func(t *testing.T) {
		cfg := &config.Config{ServerHost: "127.0.0.1", ServerPort: "-1"}
		srv := New(cfg, http.NotFoundHandler(), zap.NewNop())

		assert.Error(t, srv.Run(context.Background()))
	})
}
