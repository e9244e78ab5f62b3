package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/kodawari/backend/internal/model"
	"github.com/pageza/kodawari/backend/internal/service"
)

// MockProfileService is a mock implementation of the profile service
type MockProfileService struct {
	mock.Mock
}

// ProvisionProfile mocks the ProvisionProfile method
func (m *MockProfileService) ProvisionProfile(ctx context.Context, userID, email string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

// GetProfile mocks the GetProfile method
func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

// DeleteAccount mocks the DeleteAccount method
func (m *MockProfileService) DeleteAccount(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPurchaseService is a mock implementation of the purchase service
type MockPurchaseService struct {
	mock.Mock
}

// VerifyReceipt mocks the VerifyReceipt method
func (m *MockPurchaseService) VerifyReceipt(ctx context.Context, receipt, userID string) (*service.PurchaseResult, error) {
	args := m.Called(ctx, receipt, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurchaseResult), args.Error(1)
}

// HandleNotification mocks the HandleNotification method
func (m *MockPurchaseService) HandleNotification(ctx context.Context, signedPayload string) (*service.PurchaseResult, error) {
	args := m.Called(ctx, signedPayload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurchaseResult), args.Error(1)
}

// RecordLegacyPurchase mocks the RecordLegacyPurchase method
func (m *MockPurchaseService) RecordLegacyPurchase(ctx context.Context, email, productID, receiptData string) (*service.PurchaseResult, error) {
	args := m.Called(ctx, email, productID, receiptData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PurchaseResult), args.Error(1)
}

// MockContactMailer is a mock implementation of the contact mailer
type MockContactMailer struct {
	mock.Mock
}

// SendContact mocks the SendContact method
func (m *MockContactMailer) SendContact(ctx context.Context, toEmail, subject, message string) error {
	args := m.Called(ctx, toEmail, subject, message)
	return args.Error(0)
}
