package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// PendingRegistration связывает экраны многошагового sign-up flow:
// после отправки формы регистрации запись сообщает экрану OTP верификации,
// какой email подтверждается. Должна переживать перезапуск приложения.
type PendingRegistration struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// PendingReset связывает экраны flow сброса пароля.
// ResetToken появляется после успешной проверки OTP кода
// и требуется финальному шагу установки нового пароля.
type PendingReset struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token,omitempty"`
}

// FlowStore владеет записями незавершенных многошаговых flow.
// Жизненный цикл: создание при старте flow, чтение на следующем шаге,
// очистка при завершении или явном отказе от flow.
type FlowStore struct {
	kv KVStore
}

// NewFlowStore создает FlowStore поверх key-value хранилища
func NewFlowStore(kv KVStore) *FlowStore {
	return &FlowStore{kv: kv}
}

// SaveRegistration сохраняет запись незавершенной регистрации
func (s *FlowStore) SaveRegistration(ctx context.Context, reg *PendingRegistration) error {
	return s.save(ctx, KeyPendingRegistration, reg)
}

// Registration возвращает запись незавершенной регистрации.
// Returns ErrNoPendingFlow если запись отсутствует.
func (s *FlowStore) Registration(ctx context.Context) (*PendingRegistration, error) {
	var reg PendingRegistration
	if err := s.load(ctx, KeyPendingRegistration, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// ClearRegistration удаляет запись незавершенной регистрации
func (s *FlowStore) ClearRegistration(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyPendingRegistration)
}

// SaveReset сохраняет запись незавершенного сброса пароля
func (s *FlowStore) SaveReset(ctx context.Context, reset *PendingReset) error {
	return s.save(ctx, KeyPendingReset, reset)
}

// Reset возвращает запись незавершенного сброса пароля.
// Returns ErrNoPendingFlow если запись отсутствует.
func (s *FlowStore) Reset(ctx context.Context) (*PendingReset, error) {
	var reset PendingReset
	if err := s.load(ctx, KeyPendingReset, &reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// ClearReset удаляет запись незавершенного сброса пароля
func (s *FlowStore) ClearReset(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyPendingReset)
}

// ClearAll удаляет все записи незавершенных flow.
// Вызывается при успешном переходе в аутентифицированное состояние.
func (s *FlowStore) ClearAll(ctx context.Context) error {
	if err := s.ClearRegistration(ctx); err != nil {
		return err
	}
	return s.ClearReset(ctx)
}

func (s *FlowStore) save(ctx context.Context, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal flow record: %w", err)
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save flow record: %w", err)
	}
	return nil
}

func (s *FlowStore) load(ctx context.Context, key string, record any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ErrNoPendingFlow
		}
		return fmt.Errorf("failed to get flow record: %w", err)
	}
	if err := json.Unmarshal([]byte(data), record); err != nil {
		return fmt.Errorf("failed to unmarshal flow record: %w", err)
	}
	return nil
}
