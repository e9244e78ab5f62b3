package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pageza/kodawari/backend/internal/model"
)

var errNotificationsDisabled = errors.New("no App Store root certificate configured")

// CompletionClient generates recipe text from a prompt
type CompletionClient interface {
	Complete(ctx context.Context, p Prompt) (string, error)
	Stream(ctx context.Context, p Prompt, onFragment func(string) error) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, ownerID, title, body string, formData map[string]any) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID, ownerID string) (*model.Recipe, error)
	RenameRecipe(ctx context.Context, id uuid.UUID, ownerID, title string) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID, ownerID string) error
	ListRecipes(ctx context.Context, ownerID string, opts ListOptions) ([]RecipeSummary, error)
}

// ILabelService defines the interface for label operations
type ILabelService interface {
	ListLabels(ctx context.Context, ownerID string) ([]model.Label, error)
	CreateLabel(ctx context.Context, ownerID, name string) (*model.Label, error)
	RenameLabel(ctx context.Context, id uuid.UUID, ownerID, name string) (*model.Label, error)
	DeleteLabel(ctx context.Context, id uuid.UUID, ownerID string) error
	AttachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error
	DetachLabel(ctx context.Context, recipeID, labelID uuid.UUID, ownerID string) error
	LabelsForRecipe(ctx context.Context, recipeID uuid.UUID, ownerID string) ([]LabelRef, error)
}

// ILibraryService defines the combined recipe and label read
type ILibraryService interface {
	RecipesWithLabels(ctx context.Context, ownerID string, opts ListOptions) (*Library, error)
}

// IPurchaseService defines the interface for purchase intake
type IPurchaseService interface {
	VerifyReceipt(ctx context.Context, receipt, userID string) (*PurchaseResult, error)
	HandleNotification(ctx context.Context, signedPayload string) (*PurchaseResult, error)
	RecordLegacyPurchase(ctx context.Context, email, productID, receiptData string) (*PurchaseResult, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	ProvisionProfile(ctx context.Context, userID, email string) (*model.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// IContactMailer defines the interface for contact form mail
type IContactMailer interface {
	SendContact(ctx context.Context, toEmail, subject, message string) error
}

// ReceiptVerifier validates App Store receipts
type ReceiptVerifier interface {
	Verify(ctx context.Context, receipt string) (*ReceiptResponse, error)
}

// SignedPayloadVerifier validates App Store server notifications
type SignedPayloadVerifier interface {
	VerifyNotification(signedPayload string) (*NotificationPayload, *TransactionInfo, error)
}

// PayloadArchive keeps raw purchase payloads
type PayloadArchive interface {
	Archive(ctx context.Context, source, transactionID string, payload []byte) error
}

// IdentityAdmin manages users at the identity provider
type IdentityAdmin interface {
	DeleteUser(ctx context.Context, userID string) error
}

// OwnerPurger removes every row owned by a user
type OwnerPurger interface {
	PurgeOwner(ctx context.Context, ownerID string) error
}

var (
	_ CompletionClient      = (*OpenAIClient)(nil)
	_ IRecipeService        = (*RecipeService)(nil)
	_ ILabelService         = (*LabelService)(nil)
	_ ILibraryService       = (*LibraryService)(nil)
	_ IPurchaseService      = (*PurchaseService)(nil)
	_ IProfileService       = (*ProfileService)(nil)
	_ IContactMailer        = (*ContactMailer)(nil)
	_ ReceiptVerifier       = (*AppleReceiptClient)(nil)
	_ SignedPayloadVerifier = (*NotificationVerifier)(nil)
	_ PayloadArchive        = (*S3PayloadArchive)(nil)
	_ IdentityAdmin         = (*IdentityAdminClient)(nil)
	_ OwnerPurger           = (*RecipeService)(nil)
)
