package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase sources
const (
	PurchaseSourceReceipt      = "receipt"
	PurchaseSourceNotification = "notification"
	PurchaseSourceLegacy       = "legacy"
)

// PurchaseRecord is an append-only fact about an in-app purchase
type PurchaseRecord struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	UserID                string    `gorm:"size:255;index" json:"user_id,omitempty"`
	Email                 string    `gorm:"size:255" json:"email,omitempty"`
	ProductID             string    `gorm:"size:255;not null" json:"product_id"`
	TransactionID         string    `gorm:"size:255;not null;uniqueIndex" json:"transaction_id"`
	OriginalTransactionID string    `gorm:"size:255" json:"original_transaction_id,omitempty"`
	Source                string    `gorm:"size:32;not null" json:"source"`
	Payload               string    `gorm:"type:text" json:"-"`
	PurchasedAt           time.Time `json:"purchased_at"`
	Price                 int64     `json:"price"`
	Currency              string    `gorm:"size:8" json:"currency,omitempty"`
}

func (PurchaseRecord) TableName() string {
	return "purchase_history"
}

func (p *PurchaseRecord) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
