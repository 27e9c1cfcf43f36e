package storage

import (
	"context"

	"github.com/avykov/authkeeper/internal/models"
)

// OTPStorage defines interface for one-time code persistence.
// Codes are keyed by (email, purpose): a user has at most one active
// code per flow, saving a new one replaces the previous.
type OTPStorage interface {
	// SaveOTP stores an OTP code, replacing any existing code
	// for the same email and purpose
	SaveOTP(ctx context.Context, code *models.OTPCode) error

	// GetOTP retrieves the active OTP code for email and purpose
	// Returns ErrOTPNotFound if no code is stored
	GetOTP(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPCode, error)

	// DeleteOTP removes the OTP code for email and purpose.
	// Deleting a missing code is not an error.
	DeleteOTP(ctx context.Context, email string, purpose models.OTPPurpose) error

	// SaveResetToken stores a single-use password reset token
	SaveResetToken(ctx context.Context, token *models.ResetToken) error

	// GetResetToken retrieves reset token by value
	// Returns ErrResetTokenNotFound if token doesn't exist
	GetResetToken(ctx context.Context, token string) (*models.ResetToken, error)

	// DeleteResetToken removes reset token by value.
	// Deleting a missing token is not an error.
	DeleteResetToken(ctx context.Context, token string) error
}
