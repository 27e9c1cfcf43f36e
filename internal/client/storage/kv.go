package storage

import "context"

//go:generate moq -out kv_mock.go . KVStore

// KVStore defines the lowest persistence layer on the client:
// a durable string-keyed store that survives application restarts.
// Implementations must treat Delete of a missing key as a no-op.
type KVStore interface {
	// Get returns the value for key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Ключи персистентного хранилища клиента.
// Каждый ключ - независимая строковая запись; структурные записи кодируются в JSON.
const (
	KeyAccessToken         = "access_token"
	KeyRefreshToken        = "refresh_token"
	KeyPendingRegistration = "pending_registration"
	KeyPendingReset        = "pending_reset"
	KeySignUpResendTimer   = "signup_resend_timer"
	KeyResetResendTimer    = "reset_password_resend_timer"
	KeyTheme               = "app_theme"
	KeyLanguage            = "app_language"
)
