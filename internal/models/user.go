package models

import "time"

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"id"`            // UUID пользователя
	Email        string    `json:"email"`         // уникальный email
	DisplayName  string    `json:"display_name"`  // отображаемое имя
	PasswordHash string    `json:"password_hash"` // bcrypt хеш пароля
	Roles        []string  `json:"roles"`         // имена ролей (ADMIN, CUSTOMER, ...)
	Verified     bool      `json:"verified"`      // email подтвержден через OTP
	CreatedAt    time.Time `json:"created_at"`    // время создания
	UpdatedAt    time.Time `json:"updated_at"`    // время последнего обновления
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	Token     string    `json:"token"`      // случайное значение токена
	UserID    string    `json:"user_id"`    // ID пользователя
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
}

// OTPPurpose определяет назначение одноразового кода
type OTPPurpose string

const (
	// OTPPurposeSignUp - подтверждение email при регистрации
	OTPPurposeSignUp OTPPurpose = "sign_up"
	// OTPPurposePasswordReset - подтверждение сброса пароля
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OTPCode представляет одноразовый код, отправленный пользователю
type OTPCode struct {
	Email     string     `json:"email"`      // кому отправлен код
	Purpose   OTPPurpose `json:"purpose"`    // назначение кода
	Code      string     `json:"code"`       // 6-значный код
	ExpiresAt time.Time  `json:"expires_at"` // время истечения
	CreatedAt time.Time  `json:"created_at"` // время создания (для cooldown повторной отправки)
}

// ResetToken представляет одноразовый токен для установки нового пароля
// Выдается после успешной проверки OTP кода в flow сброса пароля
type ResetToken struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
