package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// TimerState представляет персистентное состояние resend таймера.
// ExpiresAt - абсолютный wall-clock дедлайн (unix миллисекунды),
// а не относительный счетчик: остаток корректно пересчитывается
// после suspend/resume и перезапуска приложения.
type TimerState struct {
	ExpiresAt       int64 `json:"expires_at"`
	DurationSeconds int   `json:"duration_seconds"`
}

// TimerStore хранит состояние resend таймеров по ключу flow.
// Таймеры sign-up и reset-password независимы и никогда не смешиваются.
type TimerStore struct {
	kv KVStore
}

// NewTimerStore создает TimerStore поверх key-value хранилища
func NewTimerStore(kv KVStore) *TimerStore {
	return &TimerStore{kv: kv}
}

// Save сохраняет состояние таймера под указанным ключом
func (s *TimerStore) Save(ctx context.Context, key string, state *TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal timer state: %w", err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save timer state: %w", err)
	}
	return nil
}

// Load возвращает сохраненное состояние таймера.
// Returns ErrKeyNotFound если таймер не сохранен.
func (s *TimerStore) Load(ctx context.Context, key string) (*TimerState, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var state TimerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timer state: %w", err)
	}
	return &state, nil
}

// Clear удаляет состояние таймера
func (s *TimerStore) Clear(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}
