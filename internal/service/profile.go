package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/model"
)

// Profile upsert retry policy
const (
	ProvisionAttempts   = 3
	ProvisionRetryDelay = time.Second
)

// ProfileService provisions user profiles and deletes accounts
type ProfileService struct {
	db         *gorm.DB
	identity   IdentityAdmin
	purger     OwnerPurger
	log        *zap.Logger
	retryDelay time.Duration
	upsert     func(ctx context.Context, profile *model.UserProfile) error
}

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB, identity IdentityAdmin, purger OwnerPurger, log *zap.Logger) *ProfileService {
	s := &ProfileService{
		db:         db,
		identity:   identity,
		purger:     purger,
		log:        log,
		retryDelay: ProvisionRetryDelay,
	}
	s.upsert = s.upsertProfile
	return s
}

// ProvisionProfile creates or refreshes the profile for a newly signed up
// user. Store failures are retried up to ProvisionAttempts times.
func (s *ProfileService) ProvisionProfile(ctx context.Context, userID, email string) (*model.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(email)
	if userID == "" || email == "" {
		return nil, apperrors.NewValidationError("userId and email are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("email must be a valid email address")
	}

	profile := &model.UserProfile{ID: userID, Email: email}

	var err error
	for attempt := 1; attempt <= ProvisionAttempts; attempt++ {
		if err = s.upsert(ctx, profile); err == nil {
			return profile, nil
		}
		s.log.Warn("profile upsert failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", ProvisionAttempts),
			zap.Error(err))
		if attempt == ProvisionAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return nil, apperrors.NewStoreError("failed to create user profile", err)
}

func (s *ProfileService) upsertProfile(ctx context.Context, profile *model.UserProfile) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
	}).Create(profile).Error
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user profile")
		}
		return nil, apperrors.NewStoreError("failed to fetch user profile", err)
	}
	return &profile, nil
}

// DeleteAccount removes the user from the identity provider and then deletes
// their profile, recipes, labels and assignments. A user the identity
// provider no longer knows is still purged locally.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewValidationError("userId is required")
	}

	if err := s.identity.DeleteUser(ctx, userID); err != nil {
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			return err
		}
		s.log.Info("identity user already gone, purging local data", zap.String("user_id", userID))
	}

	if err := s.purger.PurgeOwner(ctx, userID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&model.UserProfile{}).Error; err != nil {
		return apperrors.NewStoreError("failed to delete account data", err)
	}

	s.log.Info("account deleted", zap.String("user_id", userID))
	return nil
}
