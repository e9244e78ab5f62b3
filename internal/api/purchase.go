package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/service"
	"github.com/pageza/kodawari/backend/internal/types"
)

// PurchaseHandler receives receipts and App Store purchase notifications
type PurchaseHandler struct {
	responder
	purchases service.IPurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler instance
func NewPurchaseHandler(purchases service.IPurchaseService, log *zap.Logger, production bool) *PurchaseHandler {
	return &PurchaseHandler{
		responder: responder{log: log, production: production},
		purchases: purchases,
	}
}

func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	handle(rg, "/verify-receipt", methods{http.MethodPost: {h.VerifyReceipt}})
	handle(rg, "/webhook/purchase", methods{http.MethodPost: {h.PurchaseWebhook}})
}

// VerifyReceipt validates an App Store receipt and links its original
// transaction to the user's profile
func (h *PurchaseHandler) VerifyReceipt(c *gin.Context) {
	var req types.VerifyReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	result, err := h.purchases.VerifyReceipt(c.Request.Context(), req.Receipt, req.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "user profile updated",
		"purchase":  result.Record,
		"duplicate": result.Duplicate,
	})
}

// PurchaseWebhook accepts an App Store server notification, or the older
// {email, product_id, receipt_data} body when no signedPayload is sent
func (h *PurchaseHandler) PurchaseWebhook(c *gin.Context) {
	var req types.PurchaseWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	ctx := c.Request.Context()
	var (
		result *service.PurchaseResult
		err    error
	)
	if payload := strings.TrimSpace(req.SignedPayload); payload != "" {
		result, err = h.purchases.HandleNotification(ctx, payload)
	} else {
		result, err = h.purchases.RecordLegacyPurchase(ctx, req.Email, req.ProductID, req.ReceiptData)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "purchase recorded",
		"duplicate": result.Duplicate,
	})
}
