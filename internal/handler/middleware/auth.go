package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fittrack/internal/handler/response"
	jwtsvc "fittrack/pkg/jwt"
)

const (
	ContextUserIDKey    = "userID"
	ContextUserEmailKey = "userEmail"
)

// Auth возвращает middleware для аутентификации по JWT access-токену.
// Ожидает заголовок Authorization: Bearer <token>.
func Auth(jwtService jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.WithField("path", c.Request.URL.Path).Debug("missing Authorization header")
			abort(c, http.StatusUnauthorized, "missing_authorization_header", "Отсутствует заголовок Authorization")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			log.WithField("path", c.Request.URL.Path).Debug("invalid Authorization header format")
			abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Некорректный формат заголовка Authorization")
			return
		}

		claims, err := jwtService.ParseAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.WithError(err).Debug("invalid access token")
			abort(c, http.StatusUnauthorized, "invalid_token", "Недействительный access-токен")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid_token", "Недействительный access-токен")
			return
		}

		// Сохраняем данные пользователя в контексте Gin
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextUserEmailKey, claims.Email)

		c.Next()
	}
}

// UserID возвращает идентификатор пользователя, установленный Auth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abort(c *gin.Context, status int, code, message string) {
	response.Error(c, status, code, message, nil)
	c.Abort()
}
