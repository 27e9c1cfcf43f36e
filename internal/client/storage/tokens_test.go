package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/client/storage/memory"
)

func TestTokenStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewTokenStore(memory.New())

	// Отсутствие токена - валидное состояние, не ошибка
	access, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)

	// Сохраняем пару токенов
	err = store.SetTokens(ctx, "access-1", "refresh-1")
	require.NoError(t, err)

	access, err = store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)

	refresh, err = store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)

	// Clear удаляет оба ключа
	err = store.Clear(ctx)
	require.NoError(t, err)

	access, err = store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err = store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)
}

func TestTokenStore_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewTokenStore(memory.New())

	require.NoError(t, store.SetTokens(ctx, "a", "r"))
	require.NoError(t, store.Clear(ctx))

	// Повторный Clear - no-op, без ошибки
	assert.NoError(t, store.Clear(ctx))
}

func TestFlowStore_RegistrationLifecycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFlowStore(memory.New())

	// До старта flow записи нет
	_, err := store.Registration(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)

	reg := &storage.PendingRegistration{
		Email:       "alice@example.com",
		DisplayName: "Alice",
	}
	require.NoError(t, store.SaveRegistration(ctx, reg))

	got, err := store.Registration(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.Email, got.Email)
	assert.Equal(t, reg.DisplayName, got.DisplayName)

	require.NoError(t, store.ClearRegistration(ctx))

	_, err = store.Registration(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)
}

func TestFlowStore_ResetTokenExtendsRecord(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFlowStore(memory.New())

	// Шаг 1: запрошен сброс, токена еще нет
	require.NoError(t, store.SaveReset(ctx, &storage.PendingReset{Email: "alice@example.com"}))

	got, err := store.Reset(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.ResetToken)

	// Шаг 2: OTP проверен, запись расширяется reset token'ом
	got.ResetToken = "one-time-token"
	require.NoError(t, store.SaveReset(ctx, got))

	got, err = store.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "one-time-token", got.ResetToken)
}

func TestFlowStore_ClearAll(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFlowStore(memory.New())

	require.NoError(t, store.SaveRegistration(ctx, &storage.PendingRegistration{Email: "a@b.com"}))
	require.NoError(t, store.SaveReset(ctx, &storage.PendingReset{Email: "a@b.com"}))

	require.NoError(t, store.ClearAll(ctx))

	_, err := store.Registration(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)
	_, err = store.Reset(ctx)
	assert.ErrorIs(t, err, storage.ErrNoPendingFlow)
}

func TestTimerStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := storage.NewTimerStore(memory.New())

	_, err := store.Load(ctx, storage.KeySignUpResendTimer)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	state := &storage.TimerState{
		ExpiresAt:       1700000000000,
		DurationSeconds: 60,
	}
	require.NoError(t, store.Save(ctx, storage.KeySignUpResendTimer, state))

	got, err := store.Load(ctx, storage.KeySignUpResendTimer)
	require.NoError(t, err)
	assert.Equal(t, state.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, state.DurationSeconds, got.DurationSeconds)

	// Таймеры разных flow независимы
	_, err = store.Load(ctx, storage.KeyResetResendTimer)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, store.Clear(ctx, storage.KeySignUpResendTimer))
	_, err = store.Load(ctx, storage.KeySignUpResendTimer)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestPrefStore_Fallbacks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewPrefStore(memory.New())

	theme, err := store.Theme(ctx, "system")
	require.NoError(t, err)
	assert.Equal(t, "system", theme)

	require.NoError(t, store.SetTheme(ctx, "dark"))
	require.NoError(t, store.SetLanguage(ctx, "ru"))

	theme, err = store.Theme(ctx, "system")
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	lang, err := store.Language(ctx, "en")
	require.NoError(t, err)
	assert.Equal(t, "ru", lang)
}
