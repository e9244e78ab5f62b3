// Package types holds the request bodies accepted by the HTTP API
package types

// SaveRecipeRequest represents the request body for saving a generated recipe
type SaveRecipeRequest struct {
	UserID   string         `json:"user_id" binding:"required"`
	Title    string         `json:"title"`
	Recipe   string         `json:"recipe" binding:"required"`
	FormData map[string]any `json:"formData"`
}

// RenameRecipeRequest represents the request body for renaming a recipe
type RenameRecipeRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Title  string `json:"title" binding:"required"`
}

// OwnerRequest carries the owner for deletes that send a JSON body
type OwnerRequest struct {
	UserID string `json:"user_id" form:"user_id"`
}

// LabelAssignmentRequest represents the request body for attaching or
// detaching a label
type LabelAssignmentRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	LabelID string `json:"label_id" binding:"required"`
}

// CreateLabelRequest represents the request body for creating a label
type CreateLabelRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required,max=255"`
}

// RenameLabelRequest represents the request body for renaming a label
type RenameLabelRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required,max=255"`
}

// ListRecipesQuery holds the query parameters of the recipe listings
type ListRecipesQuery struct {
	UserID    string `form:"user_id" binding:"required"`
	LabelID   string `form:"label_id"`
	Limit     string `form:"limit"`
	Offset    string `form:"offset"`
	SortField string `form:"sortField"`
	SortOrder string `form:"sortOrder"`
}

// ProvisionProfileRequest represents the request body for creating a user profile
type ProvisionProfileRequest struct {
	UserID string `json:"userId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

// DeleteAccountRequest represents the request body for deleting an account
type DeleteAccountRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// VerifyReceiptRequest represents the request body for receipt verification
type VerifyReceiptRequest struct {
	Receipt string `json:"receipt" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

// PurchaseWebhookRequest accepts either an App Store signed notification or
// the legacy purchase body
type PurchaseWebhookRequest struct {
	SignedPayload string `json:"signedPayload"`
	Email         string `json:"email"`
	ProductID     string `json:"product_id"`
	ReceiptData   string `json:"receipt_data"`
}

// SendEmailRequest represents the contact form
type SendEmailRequest struct {
	ToEmail string `json:"toEmail" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}
