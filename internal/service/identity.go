package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/apperrors"
)

// IdentityAdminClient calls the identity provider's admin API
type IdentityAdminClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	log        *zap.Logger
}

// NewIdentityAdminClient creates a new identity admin client
func NewIdentityAdminClient(cfg *config.Config, log *zap.Logger) *IdentityAdminClient {
	return &IdentityAdminClient{
		baseURL:    strings.TrimRight(cfg.IdentityAdminURL, "/"),
		serviceKey: cfg.IdentityServiceKey,
		client:     &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// DeleteUser removes the user from the identity provider
func (c *IdentityAdminClient) DeleteUser(ctx context.Context, userID string) error {
	if c.baseURL == "" {
		return apperrors.NewInternalError("failed to delete user", fmt.Errorf("identity admin URL is not configured"))
	}

	endpoint := c.baseURL + "/users/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to delete user", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewExternalServiceError("failed to delete user", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError("user")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.NewExternalServiceError("failed to delete user",
			fmt.Errorf("identity admin API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	c.log.Info("deleted identity user", zap.String("user_id", userID))
	return nil
}
