package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/avykov/authkeeper/pkg/api"
)

// authPathPrefix отмечает эндпоинты аутентификации:
// 401 на них никогда не запускает refresh protocol (иначе неудачный
// логин уходил бы в бесконечный цикл обновления токенов)
const authPathPrefix = "/v1/auth/"

// requestTimeout - фиксированный таймаут исходящих запросов.
// Таймаут относится к классу сетевых ошибок и не запускает refresh.
const requestTimeout = 5 * time.Second

// TokenSource provides access to the persisted token pair.
// The token store remains the single source of truth for credentials;
// the client never caches tokens between requests.
type TokenSource interface {
	// AccessToken returns the stored access token or "" if absent
	AccessToken(ctx context.Context) (string, error)

	// RefreshToken returns the stored refresh token or "" if absent
	RefreshToken(ctx context.Context) (string, error)

	// SetTokens persists a new token pair
	SetTokens(ctx context.Context, access, refresh string) error

	// Clear removes both tokens (forced logout)
	Clear(ctx context.Context) error
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Подписывает запросы bearer токеном и прозрачно обновляет пару токенов
// при первом 401 на защищенном эндпоинте.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *slog.Logger

	// refreshGroup гарантирует единственный refresh запрос:
	// из N конкурентных 401 ровно один выполняет обновление,
	// остальные ждут его исхода и переиспользуют результат
	refreshGroup singleflight.Group
}

// NewClient создает новый API клиент
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// SignIn выполняет аутентификацию пользователя
func (c *Client) SignIn(ctx context.Context, req api.SignInRequest) (*api.TokenPair, error) {
	var resp api.TokenPair
	if err := c.doRequest(ctx, http.MethodPost, "/v1/auth/sign-in", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUp регистрирует нового пользователя
// Ответ содержит шаг регистрации и, возможно, сразу выданные токены
func (c *Client) SignUp(ctx context.Context, req api.SignUpRequest) (*api.SignUpResponse, error) {
	var resp api.SignUpResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/auth/sign-up", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUpVerify подтверждает email OTP кодом и возвращает токены
func (c *Client) SignUpVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.TokenPair, error) {
	var resp api.TokenPair
	if err := c.doRequest(ctx, http.MethodPost, "/v1/auth/sign-up/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignUpResend повторно отправляет OTP код регистрации
func (c *Client) SignUpResend(ctx context.Context, req api.ResendOTPRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/auth/sign-up/resend", req, nil)
}

// PasswordResetRequest начинает flow сброса пароля
func (c *Client) PasswordResetRequest(ctx context.Context, req api.PasswordResetRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset/request", req, nil)
}

// PasswordResetVerify проверяет OTP код и возвращает одноразовый reset token
func (c *Client) PasswordResetVerify(ctx context.Context, req api.VerifyOTPRequest) (*api.PasswordResetVerifyResponse, error) {
	var resp api.PasswordResetVerifyResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset/verify", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PasswordResetResend повторно отправляет OTP код сброса пароля
func (c *Client) PasswordResetResend(ctx context.Context, req api.ResendOTPRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset/resend", req, nil)
}

// PasswordReset устанавливает новый пароль по reset token
func (c *Client) PasswordReset(ctx context.Context, req api.PasswordResetSubmitRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/auth/password-reset", req, nil)
}

// Logout инвалидирует сессию на сервере
func (c *Client) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context) (*api.UserProfile, error) {
	var resp api.UserProfile
	if err := c.doRequest(ctx, http.MethodGet, "/v1/users/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос с bearer токеном и refresh protocol.
// Гарантия: не более одного повтора запроса после обновления токенов,
// даже если новый токен тоже отвергнут.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyData []byte
	if body != nil {
		var err error
		bodyData, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	status, respBody, err := c.send(ctx, method, path, token, bodyData)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !isAuthPath(path) {
		// Первый и единственный повтор: получаем новый токен через
		// singleflight и переигрываем исходный запрос
		newToken, refreshErr := c.refreshTokens(ctx)
		if refreshErr != nil {
			return refreshErr
		}

		status, respBody, err = c.send(ctx, method, path, newToken, bodyData)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return c.normalizeError(status, method, path, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// send выполняет один HTTP запрос без какой-либо retry логики
func (c *Client) send(ctx context.Context, method, path, token string, bodyData []byte) (int, []byte, error) {
	var bodyReader io.Reader
	if bodyData != nil {
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if bodyData != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Ответ не получен: сетевая ошибка, refresh не запускается
		c.logger.DebugContext(ctx, "request transport failure",
			"method", method, "path", path, "error", err)
		return 0, nil, api.NewError(0, method, path, "no connection to the server")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// refreshTokens обменивает refresh token на новую пару токенов.
// Через singleflight проходит ровно один вызов: проверка занятости и
// захват выполняются атомарно, конкурентные вызовы ждут общий результат.
// Неустранимая ошибка refresh означает принудительный logout.
func (c *Client) refreshTokens(ctx context.Context) (string, error) {
	v, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		// Отмена контекста одного из ожидающих запросов не должна
		// ронять общий для всех refresh
		refreshCtx := context.WithoutCancel(ctx)

		refreshToken, err := c.tokens.RefreshToken(refreshCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to read refresh token: %w", err)
		}

		if refreshToken == "" {
			if clearErr := c.tokens.Clear(refreshCtx); clearErr != nil {
				c.logger.WarnContext(refreshCtx, "failed to clear tokens", "error", clearErr)
			}
			return nil, api.NewError(http.StatusUnauthorized, http.MethodPost,
				"/v1/auth/refresh", "no refresh token available")
		}

		pair, err := c.callRefresh(refreshCtx, refreshToken)
		if err != nil {
			c.logger.InfoContext(refreshCtx, "token refresh failed, clearing session", "error", err)
			if clearErr := c.tokens.Clear(refreshCtx); clearErr != nil {
				c.logger.WarnContext(refreshCtx, "failed to clear tokens", "error", clearErr)
			}
			return nil, err
		}

		if err := c.tokens.SetTokens(refreshCtx, pair.AccessToken, pair.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed tokens: %w", err)
		}

		c.logger.DebugContext(refreshCtx, "token pair refreshed")
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// callRefresh выполняет сам refresh запрос: без bearer токена и вне doRequest,
// чтобы 401 на нем не мог рекурсивно запустить еще один refresh
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	body, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	status, respBody, err := c.send(ctx, http.MethodPost, "/v1/auth/refresh", "", body)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, c.normalizeError(status, http.MethodPost, "/v1/auth/refresh", respBody)
	}

	var pair api.TokenPair
	if err := json.Unmarshal(respBody, &pair); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	return &pair, nil
}

// normalizeError приводит неуспешный ответ к единой форме ошибки
func (c *Client) normalizeError(status int, method, path string, respBody []byte) error {
	var apiErr api.Error
	if err := json.Unmarshal(respBody, &apiErr); err == nil && len(apiErr.Detail.Messages) > 0 {
		apiErr.Status = status
		return &apiErr
	}

	message := strings.TrimSpace(string(respBody))
	if message == "" {
		message = http.StatusText(status)
	}
	return api.NewError(status, method, path, message)
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, authPathPrefix)
}
