// Package guard implements route-level authorization: a pure evaluation
// of a route's declared requirements against the current session state.
// The surrounding navigation layer is responsible for acting on a denial.
package guard

import "github.com/avykov/authkeeper/pkg/api"

// RouteConfig описывает декларативные требования доступа к экрану.
// Read-only на момент проверки.
type RouteConfig struct {
	// RequiresAuth требует аутентифицированную сессию
	RequiresAuth bool

	// RequiredRoles требует пересечения с ролями пользователя (если непусто)
	RequiredRoles []api.RoleName

	// Check - произвольный предикат; вызывается только после
	// прохождения остальных проверок
	Check func(user *api.UserProfile) bool

	// RedirectTarget - куда перенаправить при отказе
	RedirectTarget string
}

// Decision представляет результат проверки доступа
type Decision struct {
	Allowed  bool
	Redirect string
}

// Evaluate проверяет доступ к маршруту. Чистая функция без побочных
// эффектов; проверки выполняются по порядку с short-circuit на первом
// отказе, все должны пройти независимо:
//  1. нет конфигурации - доступ разрешен;
//  2. требуется аутентификация, а ее нет - отказ;
//  3. требуются роли, пересечение с ролями пользователя пусто - отказ;
//  4. кастомный предикат вернул false - отказ;
//  5. иначе - доступ разрешен.
func Evaluate(cfg *RouteConfig, user *api.UserProfile, authenticated bool) Decision {
	if cfg == nil {
		return Decision{Allowed: true}
	}

	deny := Decision{Allowed: false, Redirect: cfg.RedirectTarget}

	if cfg.RequiresAuth && !authenticated {
		return deny
	}

	if len(cfg.RequiredRoles) > 0 && !user.HasAnyRole(cfg.RequiredRoles...) {
		return deny
	}

	if cfg.Check != nil && !cfg.Check(user) {
		return deny
	}

	return Decision{Allowed: true}
}
