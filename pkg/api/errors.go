package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Error представляет нормализованную ошибку API
// Единая форма для всех ошибок, которые видит UI слой:
// статус, сообщение(я), метка времени и путь/метод исходного запроса.
// Status = 0 означает сетевую ошибку (ответ не был получен).
type Error struct {
	Status int         `json:"status,omitempty"`
	Detail ErrorDetail `json:"error"`
}

// ErrorDetail содержит детали ошибки
type ErrorDetail struct {
	Messages  Messages  `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
}

// Messages - одно или несколько сообщений об ошибке.
// Сервер возвращает либо строку, либо список строк (ошибки валидации),
// поэтому тип принимает оба варианта при декодировании.
type Messages []string

// UnmarshalJSON принимает как строку, так и массив строк
func (m *Messages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = Messages{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*m = Messages(list)
	return nil
}

// MarshalJSON кодирует одиночное сообщение строкой, список - массивом
func (m Messages) MarshalJSON() ([]byte, error) {
	if len(m) == 1 {
		return json.Marshal(m[0])
	}
	return json.Marshal([]string(m))
}

// NewError создает нормализованную ошибку
func NewError(status int, method, path string, messages ...string) *Error {
	return &Error{
		Status: status,
		Detail: ErrorDetail{
			Messages:  Messages(messages),
			Timestamp: time.Now().UTC(),
			Path:      path,
			Method:    method,
		},
	}
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return strings.Join([]string(e.Detail.Messages), "; ")
}

// IsNetwork сообщает, что запрос не получил ответа от сервера
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

// IsUnauthorized сообщает об ошибке авторизации (401)
func (e *Error) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// IsServerError сообщает об ошибке сервера (5xx)
func (e *Error) IsServerError() bool {
	return e.Status >= http.StatusInternalServerError
}
