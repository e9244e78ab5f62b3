package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/metrics"
	"github.com/pageza/kodawari/backend/internal/model"
)

// PurchaseResult reports the stored record and whether it was new
type PurchaseResult struct {
	Record    *model.PurchaseRecord `json:"purchase"`
	Duplicate bool                  `json:"duplicate"`
}

// PurchaseService records verified in-app purchases
type PurchaseService struct {
	db       *gorm.DB
	receipts ReceiptVerifier
	signed   SignedPayloadVerifier
	archive  PayloadArchive
	log      *zap.Logger
}

// NewPurchaseService creates a new PurchaseService. signed and archive may
// be nil when notification intake or archiving is not configured.
func NewPurchaseService(db *gorm.DB, receipts ReceiptVerifier, signed SignedPayloadVerifier, archive PayloadArchive, log *zap.Logger) *PurchaseService {
	return &PurchaseService{
		db:       db,
		receipts: receipts,
		signed:   signed,
		archive:  archive,
		log:      log,
	}
}

// VerifyReceipt validates a receipt with the App Store, links the original
// transaction to the user's profile and appends a purchase record.
func (s *PurchaseService) VerifyReceipt(ctx context.Context, receipt, userID string) (*PurchaseResult, error) {
	receipt = strings.TrimSpace(receipt)
	userID = strings.TrimSpace(userID)
	if receipt == "" || userID == "" {
		return nil, apperrors.NewValidationError("receipt and userId are required")
	}

	resp, err := s.receipts.Verify(ctx, receipt)
	if err != nil {
		return nil, err
	}
	latest, ok := resp.LatestPurchase()
	if !ok {
		return nil, apperrors.NewMissingDataError("no in-app purchases found in receipt")
	}
	if latest.OriginalTransactionID == "" || latest.TransactionID == "" {
		return nil, apperrors.NewMissingDataError("transaction id is missing in receipt")
	}

	payload, err := json.Marshal(latest)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode receipt purchase", err)
	}
	record := &model.PurchaseRecord{
		UserID:                userID,
		ProductID:             latest.ProductID,
		TransactionID:         latest.TransactionID,
		OriginalTransactionID: latest.OriginalTransactionID,
		Source:                model.PurchaseSourceReceipt,
		Payload:               string(payload),
		PurchasedAt:           latest.PurchasedAt(),
	}

	var created bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.UserProfile{}).
			Where("id = ?", userID).
			Update("original_transaction_id", latest.OriginalTransactionID)
		if result.Error != nil {
			return apperrors.NewStoreError("failed to update user profile", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFoundError("user profile")
		}

		created, err = insertPurchase(tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, record, created, payload), nil
}

// HandleNotification verifies a signed App Store notification and records
// its transaction. A redelivered notification is reported as a duplicate.
func (s *PurchaseService) HandleNotification(ctx context.Context, signedPayload string) (*PurchaseResult, error) {
	if s.signed == nil {
		return nil, apperrors.NewInternalError("failed to record purchase", errNotificationsDisabled)
	}
	if strings.TrimSpace(signedPayload) == "" {
		return nil, apperrors.NewMissingDataError("signedPayload is required")
	}

	notification, txn, err := s.signed.VerifyNotification(signedPayload)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(struct {
		NotificationType string           `json:"notificationType"`
		Subtype          string           `json:"subtype,omitempty"`
		NotificationUUID string           `json:"notificationUUID"`
		Transaction      *TransactionInfo `json:"transaction"`
	}{notification.NotificationType, notification.Subtype, notification.NotificationUUID, txn})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode notification", err)
	}

	record := &model.PurchaseRecord{
		UserID:                txn.AppAccountToken,
		ProductID:             txn.ProductID,
		TransactionID:         txn.TransactionID,
		OriginalTransactionID: txn.OriginalTransactionID,
		Source:                model.PurchaseSourceNotification,
		Payload:               string(payload),
		PurchasedAt:           txn.PurchasedAt(),
		Price:                 txn.Price,
		Currency:              txn.Currency,
	}

	created, err := insertPurchase(s.db.WithContext(ctx), record)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, record, created, payload), nil
}

// RecordLegacyPurchase stores a purchase reported by older clients as
// {email, product_id, receipt_data}. Replays of the same receipt are ignored.
func (s *PurchaseService) RecordLegacyPurchase(ctx context.Context, email, productID, receiptData string) (*PurchaseResult, error) {
	email = strings.TrimSpace(email)
	productID = strings.TrimSpace(productID)
	if email == "" || productID == "" || receiptData == "" {
		return nil, apperrors.NewMissingDataError("missing required fields")
	}

	sum := sha256.Sum256([]byte(receiptData))
	record := &model.PurchaseRecord{
		Email:         email,
		ProductID:     productID,
		TransactionID: "legacy-" + hex.EncodeToString(sum[:16]),
		Source:        model.PurchaseSourceLegacy,
		Payload:       receiptData,
	}

	created, err := insertPurchase(s.db.WithContext(ctx), record)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, record, created, []byte(receiptData)), nil
}

func (s *PurchaseService) finish(ctx context.Context, record *model.PurchaseRecord, created bool, payload []byte) *PurchaseResult {
	outcome := "recorded"
	if !created {
		outcome = "duplicate"
	}
	metrics.PurchasesRecordedTotal.WithLabelValues(record.Source, outcome).Inc()

	s.log.Info("purchase processed",
		zap.String("source", record.Source),
		zap.String("transaction_id", record.TransactionID),
		zap.String("product_id", record.ProductID),
		zap.String("outcome", outcome))

	if created && s.archive != nil {
		if err := s.archive.Archive(ctx, record.Source, record.TransactionID, payload); err != nil {
			s.log.Warn("failed to archive purchase payload",
				zap.String("transaction_id", record.TransactionID),
				zap.Error(err))
		}
	}
	return &PurchaseResult{Record: record, Duplicate: !created}
}

// insertPurchase appends record unless its transaction id is already stored
func insertPurchase(tx *gorm.DB, record *model.PurchaseRecord) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, apperrors.NewStoreError("failed to record purchase", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}
	var existing model.PurchaseRecord
	if err := tx.Where("transaction_id = ?", record.TransactionID).First(&existing).Error; err != nil {
		return false, apperrors.NewStoreError("failed to record purchase", err)
	}
	*record = existing
	return false, nil
}
