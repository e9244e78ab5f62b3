package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/config"
	"github.com/pageza/kodawari/backend/internal/apperrors"
)

// Status codes returned by the App Store verifyReceipt endpoint
const (
	receiptStatusOK             = 0
	receiptStatusSandboxReceipt = 21007
)

// InAppPurchase is one transaction inside a verified receipt
type InAppPurchase struct {
	ProductID             string `json:"product_id"`
	TransactionID         string `json:"transaction_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	PurchaseDateMS        string `json:"purchase_date_ms"`
}

// PurchasedAt converts the millisecond purchase date, zero when absent
func (p InAppPurchase) PurchasedAt() time.Time {
	ms, err := strconv.ParseInt(p.PurchaseDateMS, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// ReceiptInfo is the decoded receipt body
type ReceiptInfo struct {
	InApp []InAppPurchase `json:"in_app"`
}

// ReceiptResponse is the subset of the verifyReceipt response we use
type ReceiptResponse struct {
	Status            int             `json:"status"`
	Receipt           *ReceiptInfo    `json:"receipt"`
	LatestReceiptInfo []InAppPurchase `json:"latest_receipt_info"`
}

// LatestPurchase returns the newest transaction in the receipt
func (r *ReceiptResponse) LatestPurchase() (InAppPurchase, bool) {
	if r.Receipt != nil && len(r.Receipt.InApp) > 0 {
		return r.Receipt.InApp[len(r.Receipt.InApp)-1], true
	}
	if len(r.LatestReceiptInfo) > 0 {
		return r.LatestReceiptInfo[len(r.LatestReceiptInfo)-1], true
	}
	return InAppPurchase{}, false
}

// AppleReceiptClient verifies receipts against the App Store
type AppleReceiptClient struct {
	productionURL string
	sandboxURL    string
	sharedSecret  string
	client        *http.Client
	log           *zap.Logger
}

// NewAppleReceiptClient creates a receipt client from configuration
func NewAppleReceiptClient(cfg *config.Config, log *zap.Logger) *AppleReceiptClient {
	return &AppleReceiptClient{
		productionURL: cfg.AppleVerifyURL,
		sandboxURL:    cfg.AppleSandboxURL,
		sharedSecret:  cfg.AppleSharedSecret,
		client:        &http.Client{Timeout: 30 * time.Second},
		log:           log,
	}
}

// Verify posts the receipt to production and retries once against the
// sandbox when production reports a sandbox receipt.
func (c *AppleReceiptClient) Verify(ctx context.Context, receipt string) (*ReceiptResponse, error) {
	resp, err := c.post(ctx, c.productionURL, receipt)
	if err != nil {
		return nil, err
	}
	if resp.Status == receiptStatusSandboxReceipt {
		c.log.Info("sandbox receipt, retrying against sandbox")
		resp, err = c.post(ctx, c.sandboxURL, receipt)
		if err != nil {
			return nil, err
		}
	}
	if resp.Status != receiptStatusOK {
		return nil, apperrors.NewExternalServiceError("receipt verification failed",
			fmt.Errorf("receipt verification failed with status: %d", resp.Status))
	}
	return resp, nil
}

func (c *AppleReceiptClient) post(ctx context.Context, url, receipt string) (*ReceiptResponse, error) {
	payload := map[string]string{"receipt-data": receipt}
	if c.sharedSecret != "" {
		payload["password"] = c.sharedSecret
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("receipt verification failed", fmt.Errorf("failed to marshal receipt: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInternalError("receipt verification failed", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("receipt verification failed", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.NewExternalServiceError("receipt verification failed",
			fmt.Errorf("verifyReceipt returned status %d: %s", resp.StatusCode, msg))
	}

	var out ReceiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewExternalServiceError("receipt verification failed", fmt.Errorf("failed to decode response: %w", err))
	}
	return &out, nil
}
