package contextkeys

type contextKey string

// Ключи, под которыми middleware кладут значения в gin.Context
const (
	DBContextKey     = contextKey("db")
	UserIDContextKey = contextKey("userID")
	RoleContextKey   = contextKey("role")
)

func (k contextKey) String() string {
	return string(k)
}
