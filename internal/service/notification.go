package service

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/kodawari/backend/internal/apperrors"
)

var (
	ErrMissingCertificateChain = errors.New("x5c certificate chain is missing")
	ErrUntrustedCertificate    = errors.New("certificate chain is not trusted")
)

// NotificationPayload is the decoded body of an App Store server notification
type NotificationPayload struct {
	NotificationType string `json:"notificationType"`
	Subtype          string `json:"subtype,omitempty"`
	NotificationUUID string `json:"notificationUUID"`
	Data             struct {
		BundleID              string `json:"bundleId"`
		Environment           string `json:"environment"`
		SignedTransactionInfo string `json:"signedTransactionInfo"`
	} `json:"data"`
	jwt.RegisteredClaims
}

// TransactionInfo is the decoded signedTransactionInfo of a notification
type TransactionInfo struct {
	TransactionID         string `json:"transactionId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	ProductID             string `json:"productId"`
	AppAccountToken       string `json:"appAccountToken,omitempty"`
	PurchaseDate          int64  `json:"purchaseDate"`
	Price                 int64  `json:"price"`
	Currency              string `json:"currency"`
	jwt.RegisteredClaims
}

// PurchasedAt converts the millisecond purchase date
func (t *TransactionInfo) PurchasedAt() time.Time {
	if t.PurchaseDate <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.PurchaseDate).UTC()
}

// NotificationVerifier checks App Store signed payloads. The signing key is
// taken from the leaf of the x5c header, whose chain must end at the root.
type NotificationVerifier struct {
	roots *x509.CertPool
	now   func() time.Time
}

// NewNotificationVerifier creates a verifier trusting the PEM encoded roots
func NewNotificationVerifier(rootPEM []byte) (*NotificationVerifier, error) {
	pool := x509.NewCertPool()
	for {
		var block *pem.Block
		block, rootPEM = pem.Decode(rootPEM)
		if block == nil {
			break
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse root certificate: %w", err)
		}
		pool.AddCert(cert)
	}
	if pool.Equal(x509.NewCertPool()) {
		return nil, errors.New("no root certificates found")
	}
	return &NotificationVerifier{roots: pool, now: time.Now}, nil
}

// LoadNotificationVerifier reads the trusted roots from a PEM file
func LoadNotificationVerifier(path string) (*NotificationVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read root certificate: %w", err)
	}
	return NewNotificationVerifier(data)
}

// VerifyNotification verifies a signedPayload and its nested transaction
func (v *NotificationVerifier) VerifyNotification(signedPayload string) (*NotificationPayload, *TransactionInfo, error) {
	var payload NotificationPayload
	if err := v.parse(signedPayload, &payload); err != nil {
		return nil, nil, apperrors.NewExternalServiceError("invalid signed payload", err)
	}
	if payload.Data.SignedTransactionInfo == "" {
		return nil, nil, apperrors.NewMissingDataError("notification carries no transaction")
	}

	var txn TransactionInfo
	if err := v.parse(payload.Data.SignedTransactionInfo, &txn); err != nil {
		return nil, nil, apperrors.NewExternalServiceError("invalid signed transaction", err)
	}
	if txn.TransactionID == "" || txn.ProductID == "" {
		return nil, nil, apperrors.NewMissingDataError("transaction id or product id is missing")
	}
	return &payload, &txn, nil
}

func (v *NotificationVerifier) parse(signed string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(signed, claims, v.keyFromChain,
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithTimeFunc(v.now))
	return err
}

func (v *NotificationVerifier) keyFromChain(token *jwt.Token) (any, error) {
	raw, ok := token.Header["x5c"].([]any)
	if !ok || len(raw) == 0 {
		return nil, ErrMissingCertificateChain
	}

	certs := make([]*x509.Certificate, 0, len(raw))
	for _, entry := range raw {
		encoded, ok := entry.(string)
		if !ok {
			return nil, ErrMissingCertificateChain
		}
		der, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode certificate: %w", err)
		}
		cert, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}
	leaf := certs[0]
	if _, err := leaf.Verify(x509.VerifyOptions{
		Roots:         v.roots,
		Intermediates: intermediates,
		CurrentTime:   v.now(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUntrustedCertificate, err)
	}

	key, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("leaf certificate does not carry an ECDSA key")
	}
	return key, nil
}
