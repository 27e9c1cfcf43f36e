package auth

import (
	"context"
	"errors"

	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// Ошибки координатора, по которым UI слой решает, куда перенаправить пользователя
var (
	// ErrNoPendingFlow - шаг многошагового flow открыт без предыдущего шага
	// (например, экран верификации OTP без отправленной регистрации).
	// Вызывающий должен вернуть пользователя на первый экран flow.
	ErrNoPendingFlow = storage.ErrNoPendingFlow

	// ErrResetTokenMissing - финальный шаг сброса пароля без проверенного OTP.
	// Сервер при этом не вызывается; пользователя возвращают на sign-in.
	ErrResetTokenMissing = errors.New("reset token missing")
)

// Service defines the session coordinator: the top-level state machine
// behind every authentication flow. All mutation methods return the
// normalized API error on failure and are never retried automatically
// (duplicate side effects such as double registration outweigh convenience).
type Service interface {
	// SignIn аутентифицирует пользователя, сохраняет токены и загружает профиль
	SignIn(ctx context.Context, email, password string) error

	// SignUp отправляет регистрацию и возвращает требуемый следующий шаг.
	// При StepEmailOTPVerification сохраняется запись незавершенной регистрации.
	SignUp(ctx context.Context, email, password, displayName string) (api.RegistrationStep, error)

	// SignUpVerify подтверждает email OTP кодом из записи незавершенной регистрации.
	// Returns ErrNoPendingFlow если записи нет (сервер не вызывается).
	SignUpVerify(ctx context.Context, code string) error

	// SignUpResend повторно отправляет OTP код; запись flow не изменяется
	SignUpResend(ctx context.Context) error

	// Registration возвращает запись незавершенной регистрации
	Registration(ctx context.Context) (*storage.PendingRegistration, error)

	// ResetRequest начинает flow сброса пароля для указанного email
	ResetRequest(ctx context.Context, email string) error

	// ResetVerify проверяет OTP код и сохраняет полученный reset token
	// в записи незавершенного сброса
	ResetVerify(ctx context.Context, code string) error

	// ResetResend повторно отправляет OTP код сброса; запись flow не изменяется
	ResetResend(ctx context.Context) error

	// ResetPassword завершает сброс, устанавливая новый пароль.
	// Returns ErrResetTokenMissing если OTP не был проверен (сервер не вызывается).
	ResetPassword(ctx context.Context, newPassword string) error

	// PendingReset возвращает запись незавершенного сброса пароля
	PendingReset(ctx context.Context) (*storage.PendingReset, error)

	// SignOut инвалидирует сессию. Локальное состояние очищается
	// безусловно, даже если серверный вызов не удался.
	SignOut(ctx context.Context) error

	// RefreshProfile загружает профиль текущего пользователя.
	// Единственная операция с автоматическим повтором (5xx, с backoff).
	RefreshProfile(ctx context.Context) error

	// CurrentUser возвращает закешированный профиль или nil
	CurrentUser() *api.UserProfile

	// IsAuthenticated сообщает, что профиль успешно загружен в этом процессе.
	// Инвариант: IsAuthenticated() влечет CurrentUser() != nil.
	IsAuthenticated() bool

	// IsLoading сообщает, что выполняется загрузка профиля или любая мутация
	IsLoading() bool

	// OnInvalidate регистрирует подписчика сигнала инвалидации:
	// кеширующий слой сбрасывает зависимое от профиля состояние
	// при каждом login/logout переходе
	OnInvalidate(fn func())
}
