package auth

import "campus_backend/internal/models"

// LevelUnknown - уровень для нераспознанных ролей: ниже любого реального,
// поэтому любая проверка привилегий для них закрыта.
const LevelUnknown = 100

// roleLevels - чем меньше число, тем больше привилегий.
// Таблица заполняется один раз и дальше только читается.
var roleLevels = map[models.UserRole]int{
	models.UserRoleAdmin:     0,
	models.UserRoleModerator: 1,
	models.UserRoleRecruiter: 2,
	models.UserRoleBasic:     3,
}

// Level возвращает уровень роли
func Level(role models.UserRole) int {
	if level, ok := roleLevels[role]; ok {
		return level
	}
	return LevelUnknown
}

// HasAtLeast проверяет, что userRole не менее привилегирована, чем required.
// Неизвестная required-роль всегда даёт отказ.
func HasAtLeast(userRole, required models.UserRole) bool {
	if _, ok := roleLevels[required]; !ok {
		return false
	}
	return Level(userRole) <= Level(required)
}

// ParseRole проверяет строку на соответствие известной роли
func ParseRole(raw string) (models.UserRole, bool) {
	role := models.UserRole(raw)
	_, ok := roleLevels[role]
	return role, ok
}

func IsAdmin(role models.UserRole) bool {
	return role == models.UserRoleAdmin
}

// IsOneOf - проверка по явному набору ролей (без иерархии)
func IsOneOf(role models.UserRole, allowed ...models.UserRole) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
