package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/auth"
	"campus_backend/internal/logger"
	"campus_backend/internal/models"
	"campus_backend/internal/services/dto"
	"campus_backend/pkg/apperrors"
	"campus_backend/pkg/contextkeys"
)

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		claims, err := tokens.ParseToken(tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "token rejected", "error", err.Error())
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth - если токен передан и валиден, запоминает пользователя;
// иначе запрос продолжается анонимно
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := tokens.ParseToken(tokenStr); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles - доступ только для перечисленных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !roleSet[role] {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequireMinRole - доступ для роли required и всех более привилегированных
func RequireMinRole(required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
			return
		}
		if !auth.HasAtLeast(role, required) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста; "" для анонимного запроса
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDContextKey.String())
}

func GetRole(c *gin.Context) (models.UserRole, bool) {
	val, exists := c.Get(contextkeys.RoleContextKey.String())
	if !exists {
		return "", false
	}
	role, ok := val.(models.UserRole)
	return role, ok
}

// GetActor - текущий пользователь; false для анонимного запроса
func GetActor(c *gin.Context) (dto.Actor, bool) {
	userID := GetUserID(c)
	role, ok := GetRole(c)
	if userID == "" || !ok {
		return dto.Actor{}, false
	}
	return dto.Actor{ID: userID, Role: role}, true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDContextKey.String(), claims.UserID)
	c.Set(contextkeys.RoleContextKey.String(), claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
