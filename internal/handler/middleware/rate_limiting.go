package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"fittrack/internal/handler/response"
	"fittrack/internal/metrics"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit ограничивает число запросов группы routerName с одного IP.
// allowedPerMin <= 0 отключает ограничение.
func RateLimit(rateLimiter RequestRateLimiter, metricsManager *metrics.Manager, routerName string, allowedPerMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || allowedPerMin <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("fittrack:rate:%s:%s", routerName, c.ClientIP())
		res, err := rateLimiter.Allow(c.Request.Context(), key, redis_rate.PerMinute(allowedPerMin))
		if err != nil {
			log.WithError(err).WithField("router", routerName).Error("rate limiter failed")
			response.Error(c, http.StatusInternalServerError, "internal_error", "Внутренняя ошибка сервера", nil)
			c.Abort()
			return
		}

		if res.Allowed > 0 {
			c.Next()
			return
		}

		if metricsManager != nil {
			metricsManager.CounterRateLimited.Inc()
		}
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		response.Error(c, http.StatusTooManyRequests, "rate_limited", "Слишком много запросов, попробуйте позже", gin.H{
			"retry_after_seconds": retryAfter,
		})
		c.Abort()
	}
}
