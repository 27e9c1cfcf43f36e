package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrOTPNotFound indicates that no OTP code is stored for the email/purpose pair
	ErrOTPNotFound = errors.New("otp code not found")

	// ErrResetTokenNotFound indicates that password reset token was not found
	ErrResetTokenNotFound = errors.New("reset token not found")
)
