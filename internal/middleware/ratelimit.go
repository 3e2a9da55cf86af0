package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"campus_backend/internal/logger"
	"campus_backend/pkg/apperrors"
)

// Limiter - счетчик запросов на ключ
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit ограничивает запросы по пользователю, для анонимных - по IP.
// nil limiter отключает ограничение.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID := GetUserID(c); userID != "" {
			key = "user:" + userID
		}
		key = scope + ":" + key

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "rate limiter unavailable", err, "scope", scope)
		}
		if !allowed {
			apperrors.HandleError(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
