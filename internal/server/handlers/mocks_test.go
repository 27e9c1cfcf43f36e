package handlers

import (
	"context"
	"fmt"

	"github.com/avykov/authkeeper/internal/models"
	"github.com/avykov/authkeeper/internal/server/storage"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users       map[string]*models.User // email -> User
	createError error
	getError    error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) MarkVerified(ctx context.Context, userID string) error {
	user, err := m.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Verified = true
	return nil
}

func (m *mockUserStorage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, err := m.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserStorage) DeleteUser(ctx context.Context, userID string) error {
	user, err := m.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	delete(m.users, user.Email)
	return nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens        map[string]*models.RefreshToken
	deletedTokens []string
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return t, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	m.deletedTokens = append(m.deletedTokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	count := 0
	for token, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, token)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

// mockOTPStorage is a mock implementation of OTPStorage for testing
type mockOTPStorage struct {
	codes       map[string]*models.OTPCode
	resetTokens map[string]*models.ResetToken
}

func newMockOTPStorage() *mockOTPStorage {
	return &mockOTPStorage{
		codes:       make(map[string]*models.OTPCode),
		resetTokens: make(map[string]*models.ResetToken),
	}
}

func otpKey(email string, purpose models.OTPPurpose) string {
	return fmt.Sprintf("%s|%s", email, purpose)
}

func (m *mockOTPStorage) SaveOTP(ctx context.Context, code *models.OTPCode) error {
	m.codes[otpKey(code.Email, code.Purpose)] = code
	return nil
}

func (m *mockOTPStorage) GetOTP(ctx context.Context, email string, purpose models.OTPPurpose) (*models.OTPCode, error) {
	code, ok := m.codes[otpKey(email, purpose)]
	if !ok {
		return nil, storage.ErrOTPNotFound
	}
	return code, nil
}

func (m *mockOTPStorage) DeleteOTP(ctx context.Context, email string, purpose models.OTPPurpose) error {
	delete(m.codes, otpKey(email, purpose))
	return nil
}

func (m *mockOTPStorage) SaveResetToken(ctx context.Context, token *models.ResetToken) error {
	m.resetTokens[token.Token] = token
	return nil
}

func (m *mockOTPStorage) GetResetToken(ctx context.Context, token string) (*models.ResetToken, error) {
	t, ok := m.resetTokens[token]
	if !ok {
		return nil, storage.ErrResetTokenNotFound
	}
	return t, nil
}

func (m *mockOTPStorage) DeleteResetToken(ctx context.Context, token string) error {
	delete(m.resetTokens, token)
	return nil
}
