package api

// RegistrationStep указывает, какой шаг регистрации требуется после sign-up
type RegistrationStep string

const (
	// StepEmailOTPVerification - сервер отправил OTP код, требуется верификация email
	StepEmailOTPVerification RegistrationStep = "EMAIL_OTP_VERIFICATION"

	// StepCompleted - регистрация завершена без дополнительных шагов
	StepCompleted RegistrationStep = "COMPLETED"
)

// TokenPair представляет пару токенов доступа
type TokenPair struct {
	AccessToken  string `json:"accessToken"`  // JWT access token
	RefreshToken string `json:"refreshToken"` // opaque refresh token
}

// SignInRequest представляет запрос на аутентификацию
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpRequest представляет запрос на регистрацию нового пользователя
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// SignUpResponse представляет ответ на регистрацию
// Tokens присутствует только если сервер выдал токены сразу (Step = COMPLETED)
type SignUpResponse struct {
	Step   RegistrationStep `json:"step"`
	Tokens *TokenPair       `json:"tokens,omitempty"`
}

// VerifyOTPRequest представляет запрос на проверку OTP кода
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResendOTPRequest представляет запрос на повторную отправку OTP кода
type ResendOTPRequest struct {
	Email string `json:"email"`
}

// RefreshRequest представляет запрос на обновление пары токенов
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// PasswordResetRequest начинает flow сброса пароля
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetVerifyResponse содержит одноразовый reset token,
// выдаваемый после успешной проверки OTP кода
type PasswordResetVerifyResponse struct {
	ResetToken string `json:"resetToken"`
}

// PasswordResetSubmitRequest завершает flow сброса пароля
type PasswordResetSubmitRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse представляет успешный ответ без данных
type MessageResponse struct {
	Message string `json:"message"`
}
