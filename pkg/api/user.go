package api

// RoleName представляет имя роли пользователя
type RoleName string

const (
	RoleAdmin    RoleName = "ADMIN"
	RoleCustomer RoleName = "CUSTOMER"
)

// UserProfile представляет профиль текущего пользователя
// Неизменяем с точки зрения клиента, обновляется только повторным запросом
type UserProfile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Roles       []RoleName `json:"roles"`
}

// HasAnyRole проверяет, есть ли у пользователя хотя бы одна из ролей
func (p *UserProfile) HasAnyRole(roles ...RoleName) bool {
	if p == nil {
		return false
	}
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
