package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	clientapi "github.com/avykov/authkeeper/internal/client/api"
	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/pkg/api"
)

// Параметры повтора для загрузки профиля: только 5xx, небольшое
// ограниченное число попыток. Мутации не повторяются никогда.
const (
	profileRetryBase = 500 * time.Millisecond
	profileRetryMax  = 2
)

// service реализует координатор сессии
type service struct {
	apiClient clientapi.ClientAPI
	tokens    *storage.TokenStore
	flows     *storage.FlowStore
	logger    *slog.Logger

	// inFlight считает выполняющиеся операции для IsLoading
	inFlight atomic.Int32

	// mu защищает закешированное состояние сессии и список подписчиков.
	// Хранилище токенов - единственный источник правды о credentials;
	// currentUser здесь - кеш, сбрасываемый вместе с токенами.
	mu            sync.Mutex
	currentUser   *api.UserProfile
	profileFailed bool
	invalidateFns []func()
}

// Compile-time check that service implements Service
var _ Service = (*service)(nil)

// NewService создает координатор сессии
func NewService(apiClient clientapi.ClientAPI, tokens *storage.TokenStore, flows *storage.FlowStore, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		tokens:    tokens,
		flows:     flows,
		logger:    logger,
	}
}

// CurrentUser возвращает закешированный профиль или nil
func (s *service) CurrentUser() *api.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

// IsAuthenticated: профиль успешно загружен и нет незакрытой ошибки загрузки
func (s *service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser != nil && !s.profileFailed
}

// IsLoading сообщает о любой выполняющейся операции координатора
func (s *service) IsLoading() bool {
	return s.inFlight.Load() > 0
}

// OnInvalidate регистрирует подписчика сигнала инвалидации
func (s *service) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateFns = append(s.invalidateFns, fn)
}

// RefreshProfile загружает профиль текущего пользователя.
// Ошибки 5xx повторяются с экспоненциальным backoff ограниченное число раз;
// 401 после неуспешного refresh означает потерю сессии и сбрасывает кеш.
func (s *service) RefreshProfile(ctx context.Context) error {
	defer s.track()()

	var profile *api.UserProfile

	backoff := retry.WithMaxRetries(profileRetryMax, retry.NewExponential(profileRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := s.apiClient.Me(ctx)
		if err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) && apiErr.IsServerError() {
				return retry.RetryableError(err)
			}
			return err
		}
		profile = p
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.profileFailed = true

		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			// Сессия потеряна: кеш профиля больше не действителен
			s.currentUser = nil
		}
		return err
	}

	s.currentUser = profile
	s.profileFailed = false
	return nil
}

// completeAuthentication выполняет общий для всех flow переход
// в аутентифицированное состояние: сохранить токены, загрузить профиль,
// очистить записи незавершенных flow, сообщить кеширующему слою
func (s *service) completeAuthentication(ctx context.Context, pair *api.TokenPair) error {
	if err := s.tokens.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	if err := s.RefreshProfile(ctx); err != nil {
		return err
	}

	// Записи незавершенных flow очищаются при успешной аутентификации
	if err := s.flows.ClearAll(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear pending flow records", "error", err)
	}

	s.notifyInvalidate()
	return nil
}

// clearSession безусловно сбрасывает локальное состояние сессии
func (s *service) clearSession(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear token store", "error", err)
	}

	s.mu.Lock()
	s.currentUser = nil
	s.profileFailed = false
	s.mu.Unlock()

	s.notifyInvalidate()
}

// notifyInvalidate вызывает подписчиков вне блокировки
func (s *service) notifyInvalidate() {
	s.mu.Lock()
	fns := make([]func(), len(s.invalidateFns))
	copy(fns, s.invalidateFns)
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// track увеличивает счетчик выполняющихся операций на время вызова
func (s *service) track() func() {
	s.inFlight.Add(1)
	return func() {
		s.inFlight.Add(-1)
	}
}
