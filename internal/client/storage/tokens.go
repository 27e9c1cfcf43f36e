package storage

import (
	"context"
	"errors"
	"fmt"
)

// TokenStore хранит ровно два секрета: access token и refresh token.
// Токены - непрозрачные строки, клиент не проверяет их содержимое.
// Отсутствие токена - валидное состояние, не ошибка.
type TokenStore struct {
	kv KVStore
}

// NewTokenStore создает TokenStore поверх key-value хранилища
func NewTokenStore(kv KVStore) *TokenStore {
	return &TokenStore{kv: kv}
}

// SetTokens сохраняет оба токена.
// Записываются два ключа; crash между записями - принятый узкий риск.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.kv.Set(ctx, KeyAccessToken, access); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if err := s.kv.Set(ctx, KeyRefreshToken, refresh); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// AccessToken возвращает сохраненный access token или "" если его нет
func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccessToken)
}

// RefreshToken возвращает сохраненный refresh token или "" если его нет
func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefreshToken)
}

// Clear удаляет оба токена. Повторный вызов - no-op.
// Используется при logout и при неустранимой ошибке refresh.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyAccessToken); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}
	if err := s.kv.Delete(ctx, KeyRefreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *TokenStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}
