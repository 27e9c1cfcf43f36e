package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avykov/authkeeper/internal/models"
	"github.com/avykov/authkeeper/internal/server/storage"
)

// SaveOTP stores an OTP code, replacing any existing code
// for the same email and purpose
func (s *Storage) SaveOTP(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT OR REPLACE INTO otp_codes (email, purpose, code, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		code.Email,
		string(code.Purpose),
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save otp code: %w", err)
	}

	return nil
}

// GetOTP retrieves the active OTP code for email and purpose
func (s *Storage) GetOTP(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPCode, error) {
	query := `
		SELECT email, purpose, code, expires_at, created_at
		FROM otp_codes
		WHERE email = ? AND purpose = ?
	`

	code := &models.OTPCode{}

	err := s.db.QueryRowContext(ctx, query, email, string(purpose)).Scan(
		&code.Email,
		&code.Purpose,
		&code.Code,
		&code.ExpiresAt,
		&code.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOTPNotFound
		}
		return nil, fmt.Errorf("failed to get otp code: %w", err)
	}

	return code, nil
}

// DeleteOTP removes the OTP code for email and purpose
func (s *Storage) DeleteOTP(ctx context.Context, email string, purpose models.OTPPurpose) error {
	query := `DELETE FROM otp_codes WHERE email = ? AND purpose = ?`

	if _, err := s.db.ExecContext(ctx, query, email, string(purpose)); err != nil {
		return fmt.Errorf("failed to delete otp code: %w", err)
	}

	return nil
}

// SaveResetToken stores a single-use password reset token
func (s *Storage) SaveResetToken(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT OR REPLACE INTO reset_tokens (token, email, expires_at)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, token.Token, token.Email, token.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	return nil
}

// GetResetToken retrieves reset token by value
func (s *Storage) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	query := `
		SELECT token, email, expires_at
		FROM reset_tokens
		WHERE token = ?
	`

	resetToken := &models.ResetToken{}

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&resetToken.Token,
		&resetToken.Email,
		&resetToken.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return resetToken, nil
}

// DeleteResetToken removes reset token by value
func (s *Storage) DeleteResetToken(ctx context.Context, token string) error {
	query := `DELETE FROM reset_tokens WHERE token = ?`

	if _, err := s.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	return nil
}
