package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const checkTimeout = 5 * time.Second

// Pinger проверяет доступность зависимости.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc позволяет использовать функцию как Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// Handler обрабатывает health check запросы
type Handler struct {
	db     Pinger
	redis  Pinger
	appEnv string
}

// NewHandler создает новый экземпляр health handler. redis может быть nil.
func NewHandler(db Pinger, redis Pinger, appEnv string) *Handler {
	return &Handler{
		db:     db,
		redis:  redis,
		appEnv: appEnv,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health проверяет работоспособность сервера
//
//	@Summary	Проверка процесса
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Сервер работает",
	})
}

// HealthDB проверяет подключение к базе данных и хранилищу сессий.
//
//	@Summary	Проверка хранилищ
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health/db [get]
func (h *Handler) HealthDB(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "error",
			Message: "База данных не инициализирована",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	for name, p := range map[string]Pinger{"database": h.db, "redis": h.redis} {
		if p == nil {
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			healthy = false
			log.WithError(err).WithField("dependency", name).Warn("health check failed")
			// В production детали ошибки не раскрываются
			checks[name] = "unavailable"
			if h.appEnv != "production" {
				checks[name] = "unavailable: " + err.Error()
			}
			continue
		}
		checks[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:  "error",
			Message: "Хранилище недоступно",
			Checks:  checks,
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "База данных доступна",
		Checks:  checks,
	})
}
