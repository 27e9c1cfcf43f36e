package api

import (
	"context"

	"github.com/avykov/authkeeper/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI defines the full API surface used by client services
type ClientAPI interface {
	SignIn(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error)
	SignUpVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.TokenPair, error)
	SignUpResend(ctx context.Context, req api.ResendOTPRequest) error
	PasswordResetRequest(ctx context.Context, req api.PasswordResetRequest) error
	PasswordResetVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.PasswordResetVerifyResponse, error)
	PasswordResetResend(ctx context.Context, req api.ResendOTPRequest) error
	PasswordReset(ctx context.Context, req api.PasswordResetSubmitRequest) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*api.UserProfile, error)
}

// Compile-time check that Client implements ClientAPI
var _ ClientAPI = (*Client)(nil)
