package model

import "time"

// UserProfile mirrors an identity provider user inside the application database
type UserProfile struct {
	ID                    string    `gorm:"size:255;primaryKey" json:"id"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	Email                 string    `gorm:"size:255" json:"email"`
	OriginalTransactionID string    `gorm:"size:255" json:"original_transaction_id,omitempty"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
