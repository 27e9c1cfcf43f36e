// Package timer implements the persisted resend countdown used by
// OTP-based flows. The deadline is stored as an absolute wall-clock
// timestamp, so the remaining time stays correct across application
// suspension and restarts.
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avykov/authkeeper/internal/client/storage"
)

// DefaultDuration - стандартный cooldown между повторными отправками кода
const DefaultDuration = 60 * time.Second

// Timer представляет resend таймер одного flow.
// Каждый flow (sign-up, reset-password) владеет своим таймером
// с отдельным ключом хранилища; состояния никогда не смешиваются.
type Timer struct {
	store      *storage.TimerStore
	key        string
	duration   time.Duration
	onComplete func()
	logger     *slog.Logger

	// mu защищает состояние тикающего цикла.
	// Одновременно живет не более одного цикла: запуск нового
	// сначала останавливает предыдущий.
	mu        sync.Mutex
	expiresAt time.Time
	running   bool
	stopC     chan struct{}
}

// New создает таймер для указанного ключа хранилища.
// onComplete вызывается один раз при истечении таймера (может быть nil).
func New(store *storage.TimerStore, key string, duration time.Duration, onComplete func(), logger *slog.Logger) *Timer {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Timer{
		store:      store,
		key:        key,
		duration:   duration,
		onComplete: onComplete,
		logger:     logger,
	}
}

// Start запускает новый отсчет: сохраняет абсолютный дедлайн
// и начинает тикающий цикл с секундным разрешением
func (t *Timer) Start(ctx context.Context) error {
	expiresAt := time.Now().Add(t.duration)

	state := &storage.TimerState{
		ExpiresAt:       expiresAt.UnixMilli(),
		DurationSeconds: int(t.duration / time.Second),
	}
	if err := t.store.Save(ctx, t.key, state); err != nil {
		return fmt.Errorf("failed to persist timer: %w", err)
	}

	t.mu.Lock()
	t.startLocked(expiresAt)
	t.mu.Unlock()

	return nil
}

// Resume восстанавливает таймер из хранилища после перезапуска приложения.
// Неистекший дедлайн продолжает отсчет с пересчитанного остатка;
// истекший или отсутствующий запускает новый отсчет, если autoStart = true.
func (t *Timer) Resume(ctx context.Context, autoStart bool) error {
	state, err := t.store.Load(ctx, t.key)
	if err != nil {
		if err == storage.ErrKeyNotFound {
			if autoStart {
				return t.Start(ctx)
			}
			return nil
		}
		return fmt.Errorf("failed to load timer: %w", err)
	}

	expiresAt := time.UnixMilli(state.ExpiresAt)
	if !time.Now().Before(expiresAt) {
		// Дедлайн прошел пока приложение не работало
		if err := t.store.Clear(ctx, t.key); err != nil {
			return fmt.Errorf("failed to clear expired timer: %w", err)
		}
		if autoStart {
			return t.Start(ctx)
		}
		return nil
	}

	t.mu.Lock()
	t.startLocked(expiresAt)
	t.mu.Unlock()

	return nil
}

// Stop отменяет отсчет и очищает персистентное состояние
func (t *Timer) Stop(ctx context.Context) error {
	t.mu.Lock()
	t.cancelLocked()
	t.mu.Unlock()

	return t.store.Clear(ctx, t.key)
}

// Remaining возвращает остаток в целых секундах (округление вверх).
// Для неактивного таймера возвращается полная длительность.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return int(t.duration / time.Second)
	}

	left := time.Until(t.expiresAt)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// CanResend сообщает, можно ли отправить код повторно
func (t *Timer) CanResend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.running
}

// startLocked запускает тикающий цикл; вызывается под mu
func (t *Timer) startLocked(expiresAt time.Time) {
	// Предыдущий цикл обязан остановиться до запуска нового:
	// два цикла писали бы один и тот же ключ хранилища
	t.cancelLocked()

	stop := make(chan struct{})
	t.stopC = stop
	t.expiresAt = expiresAt
	t.running = true

	go t.loop(stop, expiresAt)
}

// cancelLocked останавливает текущий цикл; вызывается под mu
func (t *Timer) cancelLocked() {
	if t.stopC != nil {
		close(t.stopC)
		t.stopC = nil
	}
	t.running = false
	t.expiresAt = time.Time{}
}

// loop тикает раз в секунду и пересчитывает остаток от абсолютного
// дедлайна; относительный счетчик уплывал бы при suspend/resume
func (t *Timer) loop(stop chan struct{}, expiresAt time.Time) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if time.Now().Before(expiresAt) {
				continue
			}
			t.expire(stop)
			return
		}
	}
}

// expire переводит таймер в истекшее состояние
func (t *Timer) expire(stop chan struct{}) {
	t.mu.Lock()
	if t.stopC != stop {
		// Цикл уже заменен новым отсчетом
		t.mu.Unlock()
		return
	}
	t.stopC = nil
	t.running = false
	t.expiresAt = time.Time{}
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.Clear(ctx, t.key); err != nil {
		t.logger.Warn("failed to clear expired timer state", "key", t.key, "error", err)
	}

	if t.onComplete != nil {
		t.onComplete()
	}
}

// FormatTime форматирует остаток секунд как "MM:SS"
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
