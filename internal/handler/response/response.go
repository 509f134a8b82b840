package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ErrorBody описывает стандартный формат ошибки API.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse: обёртка ошибки в теле ответа.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error отправляет JSON-ответ с ошибкой в едином формате.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// InvalidBody отвечает 400 на тело запроса, которое не удалось разобрать.
func InvalidBody(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, "invalid_request", "Некорректное тело запроса", err.Error())
}

// Validation отвечает 400 на ошибку проверки входных данных.
func Validation(c *gin.Context, err error) {
	Error(c, http.StatusBadRequest, "validation_error", "Некорректные данные", err.Error())
}

// Internal логирует ошибку и отвечает 500 без подробностей.
func Internal(c *gin.Context, handler string, err error) {
	entry := log.WithError(err).WithField("handler", handler)
	if v, ok := c.Get("userID"); ok {
		entry = entry.WithField("user_id", v)
	}
	entry.Error("request failed")
	Error(c, http.StatusInternalServerError, "internal_error", "Внутренняя ошибка сервера", nil)
}
