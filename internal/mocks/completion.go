package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/kodawari/backend/internal/service"
)

// MockCompletionClient is a mock implementation of the completion gateway.
// Fragments set on the mock are delivered by Stream before the configured
// error is returned.
type MockCompletionClient struct {
	mock.Mock
	Fragments []string
}

// Complete mocks the Complete method
func (m *MockCompletionClient) Complete(ctx context.Context, p service.Prompt) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

// Stream mocks the Stream method
func (m *MockCompletionClient) Stream(ctx context.Context, p service.Prompt, onFragment func(string) error) error {
	args := m.Called(ctx, p)
	for _, f := range m.Fragments {
		if err := onFragment(f); err != nil {
			return err
		}
	}
	return args.Error(0)
}
