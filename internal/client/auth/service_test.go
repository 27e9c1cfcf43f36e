package auth

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/client/storage/memory"
	"github.com/avykov/authkeeper/pkg/api"
)

// fakeAPI реализует clientapi.ClientAPI через настраиваемые функции
type fakeAPI struct {
	signIn         func(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error)
	signUp         func(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error)
	signUpVerify   func(ctx context.Context, req api.VerifyOTPRequest) (*api.TokenPair, error)
	signUpResend   func(ctx context.Context, req api.ResendOTPRequest) error
	resetRequest   func(ctx context.Context, req api.PasswordResetRequest) error
	resetVerify    func(ctx context.Context, req api.VerifyOTPRequest) (*api.PasswordResetVerifyResponse, error)
	resetResend    func(ctx context.Context, req api.ResendOTPRequest) error
	resetPassword  func(ctx context.Context, req api.PasswordResetSubmitRequest) error
	logout         func(ctx context.Context) error
	me             func(ctx context.Context) (*api.UserProfile, error)
	meCalls        int
	resetPwdCalls  int
	signUpVfyCalls int
}

func (f *fakeAPI) SignIn(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error) {
	return f.signIn(ctx, req)
}

func (f *fakeAPI) SignUp(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
	return f.signUp(ctx, req)
}

func (f *fakeAPI) SignUpVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.TokenPair, error) {
	f.signUpVfyCalls++
	return f.signUpVerify(ctx, req)
}

func (f *fakeAPI) SignUpResend(ctx context.Context, req api.ResendOTPRequest) error {
	return f.signUpResend(ctx, req)
}

func (f *fakeAPI) PasswordResetRequest(ctx context.Context, req api.PasswordResetRequest) error {
	return f.resetRequest(ctx, req)
}

func (f *fakeAPI) PasswordResetVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.PasswordResetVerifyResponse, error) {
	return f.resetVerify(ctx, req)
}

func (f *fakeAPI) PasswordResetResend(ctx context.Context, req api.ResendOTPRequest) error {
	return f.resetResend(ctx, req)
}

func (f *fakeAPI) PasswordReset(ctx context.Context, req api.PasswordResetSubmitRequest) error {
	f.resetPwdCalls++
	return f.resetPassword(ctx, req)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	return f.logout(ctx)
}

func (f *fakeAPI) Me(ctx context.Context) (*api.UserProfile, error) {
	f.meCalls++
	return f.me(ctx)
}

// окружение теста: координатор с in-memory хранилищем и fake API
type testEnv struct {
	svc    Service
	apiC   *fakeAPI
	tokens *storage.TokenStore
	flows  *storage.FlowStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := memory.New()
	tokens := storage.NewTokenStore(kv)
	flows := storage.NewFlowStore(kv)
	apiC := &fakeAPI{
		me: func(ctx context.Context) (*api.UserProfile, error) {
			return &api.UserProfile{
				ID:          "u-1",
				Email:       "alice@example.com",
				DisplayName: "Alice",
				Roles:       []api.RoleName{api.RoleCustomer},
			}, nil
		},
	}

	return &testEnv{
		svc:    NewService(apiC, tokens, flows, slog.New(slog.DiscardHandler)),
		apiC:   apiC,
		tokens: tokens,
		flows:  flows,
	}
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signIn = func(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error) {
		assert.Equal(t, "alice@example.com", req.Email)
		return &api.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
	}

	var invalidated int
	env.svc.OnInvalidate(func() { invalidated++ })

	// Оставляем запись незавершенного flow: успешная аутентификация
	// должна ее очистить
	require.NoError(t, env.flows.SaveReset(ctx, &storage.PendingReset{Email: "old@example.com"}))

	err := env.svc.SignIn(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	assert.True(t, env.svc.IsAuthenticated())
	require.NotNil(t, env.svc.CurrentUser())
	assert.Equal(t, "alice@example.com", env.svc.CurrentUser().Email)

	access, err := env.tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)

	assert.Equal(t, 1, invalidated)

	_, err = env.flows.Reset(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)
}

func TestService_SignIn_Failure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	wantErr := api.NewError(http.StatusUnauthorized, http.MethodPost, "/v1/auth/sign-in", "invalid credentials")
	env.apiC.signIn = func(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error) {
		return nil, wantErr
	}

	err := env.svc.SignIn(ctx, "alice@example.com", "wrong-password")
	require.Error(t, err)

	// Ошибка пробрасывается без изменений
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Error())

	assert.False(t, env.svc.IsAuthenticated())
	assert.Nil(t, env.svc.CurrentUser())
}

func TestService_SignUp_OTPStep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signUp = func(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
		return &api.SignUpResponse{Step: api.StepEmailOTPVerification}, nil
	}

	step, err := env.svc.SignUp(ctx, "alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, api.StepEmailOTPVerification, step)
	assert.False(t, env.svc.IsAuthenticated())

	// Запись незавершенной регистрации сохранена для следующего шага
	reg, err := env.svc.Registration(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "Alice", reg.DisplayName)
}

func TestService_SignUp_CompletedWithTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signUp = func(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
		return &api.SignUpResponse{
			Step:   api.StepCompleted,
			Tokens: &api.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
		}, nil
	}

	step, err := env.svc.SignUp(ctx, "alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, api.StepCompleted, step)
	assert.True(t, env.svc.IsAuthenticated())
}

func TestService_SignUp_CompletedWithoutTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signUp = func(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
		return &api.SignUpResponse{Step: api.StepCompleted}, nil
	}

	step, err := env.svc.SignUp(ctx, "alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	assert.Equal(t, api.StepCompleted, step)

	// Токенов нет - пользователь должен выполнить sign-in отдельно
	assert.False(t, env.svc.IsAuthenticated())
	access, err := env.tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
}

// Возобновление sign-up: верификация использует сохраненную запись,
// после успеха запись очищена и повторная верификация не вызывает сервер
func TestService_SignUpVerify_Resume(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signUp = func(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
		return &api.SignUpResponse{Step: api.StepEmailOTPVerification}, nil
	}
	env.apiC.signUpVerify = func(ctx context.Context, req api.VerifyOTPRequest) (*api.TokenPair, error) {
		// Email берется из персистентной записи, не передается заново
		assert.Equal(t, "alice@example.com", req.Email)
		assert.Equal(t, "123456", req.Code)
		return &api.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
	}

	_, err := env.svc.SignUp(ctx, "alice@example.com", "password123", "Alice")
	require.NoError(t, err)

	err = env.svc.SignUpVerify(ctx, "123456")
	require.NoError(t, err)
	assert.True(t, env.svc.IsAuthenticated())

	// Запись очищена; повторная верификация - redirect, не вызов сервера
	err = env.svc.SignUpVerify(ctx, "123456")
	assert.ErrorIs(t, err, ErrNoPendingFlow)
	assert.Equal(t, 1, env.apiC.signUpVfyCalls)
}

func TestService_SignUpVerify_NoPendingFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	err := env.svc.SignUpVerify(ctx, "123456")
	assert.ErrorIs(t, err, ErrNoPendingFlow)
	assert.Equal(t, 0, env.apiC.signUpVfyCalls)
}

func TestService_SignUpResend_KeepsRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.NoError(t, env.flows.SaveRegistration(ctx, &storage.PendingRegistration{
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}))

	var resent string
	env.apiC.signUpResend = func(ctx context.Context, req api.ResendOTPRequest) error {
		resent = req.Email
		return nil
	}

	require.NoError(t, env.svc.SignUpResend(ctx))
	assert.Equal(t, "alice@example.com", resent)

	// Запись не изменена и не очищена
	reg, err := env.svc.Registration(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", reg.DisplayName)
}

func TestService_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.resetRequest = func(ctx context.Context, req api.PasswordResetRequest) error {
		return nil
	}
	env.apiC.resetVerify = func(ctx context.Context, req api.VerifyOTPRequest) (*api.PasswordResetVerifyResponse, error) {
		assert.Equal(t, "alice@example.com", req.Email)
		return &api.PasswordResetVerifyResponse{ResetToken: "one-time-token"}, nil
	}
	env.apiC.resetPassword = func(ctx context.Context, req api.PasswordResetSubmitRequest) error {
		assert.Equal(t, "one-time-token", req.ResetToken)
		assert.Equal(t, "new-password-1", req.NewPassword)
		return nil
	}

	// Шаг 1: запрос
	require.NoError(t, env.svc.ResetRequest(ctx, "alice@example.com"))

	pending, err := env.svc.PendingReset(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending.ResetToken)

	// Шаг 2: верификация OTP расширяет запись reset token'ом
	require.NoError(t, env.svc.ResetVerify(ctx, "123456"))

	pending, err = env.svc.PendingReset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one-time-token", pending.ResetToken)

	// Шаг 3: установка нового пароля очищает запись
	require.NoError(t, env.svc.ResetPassword(ctx, "new-password-1"))

	_, err = env.svc.PendingReset(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)
}

// Финальный шаг без проверенного OTP не вызывает сервер
func TestService_ResetPassword_MissingToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// Вообще нет записи flow
	err := env.svc.ResetPassword(ctx, "new-password-1")
	assert.ErrorIs(t, err, ErrResetTokenMissing)
	assert.Equal(t, 0, env.apiC.resetPwdCalls)

	// Запись есть, но OTP не проверен (нет reset token)
	require.NoError(t, env.flows.SaveReset(ctx, &storage.PendingReset{Email: "alice@example.com"}))

	err = env.svc.ResetPassword(ctx, "new-password-1")
	assert.ErrorIs(t, err, ErrResetTokenMissing)
	assert.Equal(t, 0, env.apiC.resetPwdCalls)
}

// Logout безусловен: локальная сессия очищается даже при сетевой ошибке,
// но ошибка сервера все равно возвращается
func TestService_SignOut_Unconditional(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.apiC.signIn = func(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error) {
		return &api.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}, nil
	}
	require.NoError(t, env.svc.SignIn(ctx, "alice@example.com", "password123"))
	require.True(t, env.svc.IsAuthenticated())

	networkErr := api.NewError(0, http.MethodPost, "/v1/auth/logout", "no connection to the server")
	env.apiC.logout = func(ctx context.Context) error {
		return networkErr
	}

	err := env.svc.SignOut(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, networkErr)

	assert.False(t, env.svc.IsAuthenticated())
	assert.Nil(t, env.svc.CurrentUser())

	access, err := env.tokens.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err := env.tokens.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)
}
