// Package request содержит общие для обработчиков функции разбора запроса.
// При ошибке функции сами отправляют ответ, обработчику остаётся вернуться.
package request

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fittrack/internal/handler/middleware"
	"fittrack/internal/handler/response"
)

// DateLayout: формат дат в API.
const DateLayout = time.DateOnly

// UserID возвращает пользователя, установленного middleware.Auth.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", "Требуется аутентификация", nil)
		return uuid.Nil, false
	}
	return id, true
}

// canonicalUUIDLength: длина UUID в виде xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx.
const canonicalUUIDLength = 36

var errNonCanonicalUUID = errors.New("uuid must be in canonical 8-4-4-4-12 form")

// ParseID разбирает UUID только в каноническом виде с дефисами.
// Формы {...}, urn:uuid:... и 32 hex-цифры без дефисов отклоняются.
func ParseID(raw string) (uuid.UUID, error) {
	if len(raw) != canonicalUUIDLength {
		return uuid.Nil, errNonCanonicalUUID
	}
	return uuid.Parse(raw)
}

// PathID разбирает UUID из параметра пути до любых обращений к хранилищу.
func PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := ParseID(c.Param(name))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid_id", "Некорректный идентификатор", gin.H{"param": name})
		return uuid.Nil, false
	}
	return id, true
}

// ParseDate разбирает дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// QueryDate разбирает необязательный параметр-дату. Пустой параметр даёт nil.
func QueryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := ParseDate(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Некорректная дата, ожидается YYYY-MM-DD", gin.H{"param": name})
		return nil, false
	}
	return &t, true
}

// QueryInt разбирает необязательный целочисленный параметр.
func QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "validation_error", "Некорректное числовое значение", gin.H{"param": name})
		return 0, false
	}
	return v, true
}
