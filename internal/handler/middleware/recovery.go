package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fittrack/internal/handler/response"
	"fittrack/internal/metrics"
)

// Recovery перехватывает панику обработчика и отвечает 500 в едином формате ошибок.
func Recovery(metricsManager *metrics.Manager) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
		}).Errorf("http: panic serving request: %v\n%s", recovered, debug.Stack())

		if metricsManager != nil {
			metricsManager.CounterHandleRequestPanic.Inc()
		}

		response.Error(c, http.StatusInternalServerError, "internal_error", "Внутренняя ошибка сервера", nil)
		c.Abort()
	})
}
