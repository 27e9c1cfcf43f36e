package storage

import (
	"context"
	"errors"
)

// PrefStore хранит пользовательские настройки приложения (тема, язык).
// Отсутствие настройки возвращается как переданный default, не как ошибка.
type PrefStore struct {
	kv KVStore
}

// NewPrefStore создает PrefStore поверх key-value хранилища
func NewPrefStore(kv KVStore) *PrefStore {
	return &PrefStore{kv: kv}
}

// Theme возвращает сохраненную тему или fallback
func (s *PrefStore) Theme(ctx context.Context, fallback string) (string, error) {
	return s.get(ctx, KeyTheme, fallback)
}

// SetTheme сохраняет тему
func (s *PrefStore) SetTheme(ctx context.Context, theme string) error {
	return s.kv.Set(ctx, KeyTheme, theme)
}

// Language возвращает сохраненный язык или fallback
func (s *PrefStore) Language(ctx context.Context, fallback string) (string, error) {
	return s.get(ctx, KeyLanguage, fallback)
}

// SetLanguage сохраняет язык
func (s *PrefStore) SetLanguage(ctx context.Context, lang string) error {
	return s.kv.Set(ctx, KeyLanguage, lang)
}

func (s *PrefStore) get(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return value, nil
}
