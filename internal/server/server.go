package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/multierr"

	_ "fittrack/docs"
	"fittrack/internal/config"
	"fittrack/internal/database"
	authhandler "fittrack/internal/handler/auth"
	"fittrack/internal/handler/health"
	"fittrack/internal/handler/middleware"
	profilehandler "fittrack/internal/handler/profile"
	"fittrack/internal/handler/response"
	statshandler "fittrack/internal/handler/stats"
	weighthandler "fittrack/internal/handler/weight"
	workouthandler "fittrack/internal/handler/workout"
	"fittrack/internal/metrics"
	"fittrack/internal/session"
	authuc "fittrack/internal/usecase/auth"
	profileuc "fittrack/internal/usecase/profile"
	statsuc "fittrack/internal/usecase/stats"
	weightuc "fittrack/internal/usecase/weight"
	workoutuc "fittrack/internal/usecase/workout"
	jwtsvc "fittrack/pkg/jwt"
	"fittrack/pkg/mailer"
)

// Deps описывает внешние ресурсы сервера.
type Deps struct {
	Storage     Storage
	EmailSender mailer.EmailSender
	// DB и Redis используются для health checks; Redis также для rate limit.
	// nil отключает соответствующую проверку.
	DB    *database.DB
	Redis *redis.Client
}

// Server представляет HTTP сервер приложения
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	deps       Deps

	registry *prometheus.Registry
	metrics  *metrics.Manager
	hub      *session.Hub
	events   <-chan session.Event
	stopSub  func()

	jwtService     jwtsvc.Service
	statsService   statsuc.Service
	authHandler    *authhandler.Handler
	profileHandler *profilehandler.Handler
	weightHandler  *weighthandler.Handler
	workoutHandler *workouthandler.Handler
	statsHandler   *statshandler.Handler
	healthHandler  *health.Handler
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config, deps Deps) *Server {
	// Устанавливаем режим Gin в зависимости от окружения
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		router:   gin.New(),
		cfg:      cfg,
		deps:     deps,
		registry: prometheus.NewRegistry(),
		hub:      session.NewHub(0),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = metrics.NewManager("fittrack", "server", s.registry)
	// Подписываемся сразу, чтобы не потерять события до Start.
	s.events, s.stopSub = s.hub.Subscribe()

	s.setupServices()
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupServices собирает usecase-слой и обработчики.
func (s *Server) setupServices() {
	st := s.deps.Storage

	s.jwtService = jwtsvc.NewService(&s.cfg.JWT)
	s.statsService = statsuc.NewService(
		st.Workouts,
		st.Weights,
		statsuc.NewCache(s.cfg.Stats.CacheSizeMB),
		s.metrics,
		statsuc.Config{
			WeeklyGoal: s.cfg.Stats.WeeklyGoal,
			MonthsBack: s.cfg.Stats.MonthsBack,
			CacheTTL:   s.cfg.Stats.CacheTTL,
		},
	)
	notifier := &writeNotifier{stats: s.statsService, metrics: s.metrics}

	profileService := profileuc.NewService(st.Profiles, st.Users, st.Workouts, st.Weights, st.Sessions, s.hub)
	authService := authuc.NewService(
		st.Users,
		st.EmailVerifications,
		profileService,
		st.Sessions,
		s.jwtService,
		s.deps.EmailSender,
		s.hub,
		authuc.Config{
			VerificationTTL:  s.cfg.Email.VerificationTTL,
			MaxAttempts:      s.cfg.Email.MaxAttempts,
			RedirectURL:      s.cfg.Auth.RedirectURL,
			ResetRedirectURL: s.cfg.Auth.ResetRedirectURL,
		},
	)

	s.authHandler = authhandler.NewHandler(authService)
	s.profileHandler = profilehandler.NewHandler(profileService)
	s.weightHandler = weighthandler.NewHandler(weightuc.NewService(st.Weights, notifier))
	s.workoutHandler = workouthandler.NewHandler(workoutuc.NewService(st.Workouts, notifier))
	s.statsHandler = statshandler.NewHandler(s.statsService)

	var dbPinger, redisPinger health.Pinger
	if s.deps.DB != nil {
		dbPinger = s.deps.DB
	}
	if s.deps.Redis != nil {
		redisPinger = health.PingerFunc(func(ctx context.Context) error {
			return s.deps.Redis.Ping(ctx).Err()
		})
	}
	s.healthHandler = health.NewHandler(dbPinger, redisPinger, s.cfg.AppEnv)
}

// setupMiddleware настраивает middleware для роутера
func (s *Server) setupMiddleware() {
	// Recovery должен быть первым для перехвата паник
	s.router.Use(middleware.Recovery(s.metrics))
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.RequestMetrics(s.metrics))
	s.router.Use(middleware.CORS(&s.cfg.CORS))
}

// setupRoutes настраивает маршруты приложения
func (s *Server) setupRoutes() {
	// GET /health: базовый health-check сервера (жив ли процесс).
	s.router.GET("/health", s.healthHandler.Health)
	// GET /health/db: проверка доступности базы данных и redis.
	s.router.GET("/health/db", s.healthHandler.HealthDB)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "not_found", "Маршрут не найден", nil)
	})

	v1 := s.router.Group("/api/v1")
	v1.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "FitTrack API v1",
			"version": "1.0.0",
		})
	})

	s.setupAuthRoutes(v1)
	s.setupProtectedRoutes(v1)
}

// setupAuthRoutes настраивает эндпоинты аутентификации.
func (s *Server) setupAuthRoutes(v1 *gin.RouterGroup) {
	var limiter middleware.RequestRateLimiter
	if s.deps.Redis != nil {
		limiter = redis_rate.NewLimiter(s.deps.Redis)
	}

	authGroup := v1.Group("/auth")
	authGroup.Use(middleware.RateLimit(limiter, s.metrics, "auth", s.cfg.Auth.RateLimitPerMin))
	{
		authGroup.POST("/register", s.authHandler.Register)
		authGroup.POST("/verify-email", s.authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", s.authHandler.ResendVerification)
		authGroup.POST("/login", s.authHandler.Login)
		authGroup.POST("/refresh", s.authHandler.Refresh)
		authGroup.POST("/logout", s.authHandler.Logout)
		authGroup.POST("/password/forgot", s.authHandler.ForgotPassword)
		authGroup.POST("/password/reset", s.authHandler.ResetPassword)
		authGroup.GET("/session", middleware.Auth(s.jwtService), s.authHandler.Session)
	}
}

// setupProtectedRoutes настраивает эндпоинты, требующие access-токен.
func (s *Server) setupProtectedRoutes(v1 *gin.RouterGroup) {
	protected := v1.Group("")
	protected.Use(middleware.Auth(s.jwtService))

	protected.GET("/profile", s.profileHandler.Get)
	protected.PUT("/profile", s.profileHandler.Update)
	protected.DELETE("/profile", s.profileHandler.Delete)

	weights := protected.Group("/weights")
	{
		weights.GET("", s.weightHandler.List)
		weights.POST("", s.weightHandler.Create)
		weights.GET("/trend", s.weightHandler.Trend)
		weights.GET("/:id", s.weightHandler.Get)
		weights.DELETE("/:id", s.weightHandler.Delete)
	}

	workouts := protected.Group("/workouts")
	{
		workouts.GET("", s.workoutHandler.List)
		workouts.POST("", s.workoutHandler.Create)
		workouts.GET("/:id", s.workoutHandler.Get)
		workouts.PUT("/:id", s.workoutHandler.Update)
		workouts.DELETE("/:id", s.workoutHandler.Delete)
	}

	stats := protected.Group("/stats")
	{
		stats.GET("/dashboard", s.statsHandler.Dashboard)
		stats.GET("/overview", s.statsHandler.Overview)
		stats.GET("/calendar", s.statsHandler.Calendar)
		stats.GET("/calendar/day", s.statsHandler.Day)
	}
}

// consumeSessionEvents логирует события сессий, считает их в метриках
// и сбрасывает кэш статистики при выходе и удалении учётной записи.
// Завершается после закрытия hub.
func (s *Server) consumeSessionEvents() {
	for e := range s.events {
		s.handleSessionEvent(e)
	}
}

func (s *Server) handleSessionEvent(e session.Event) {
	log.WithFields(log.Fields{
		"event":   e.Type,
		"user_id": e.UserID,
	}).Info("session event")
	s.metrics.CounterSessionEvents.WithLabelValues(string(e.Type)).Inc()

	switch e.Type {
	case session.EventSignedOut, session.EventAccountDeleted:
		s.statsService.UserDataChanged(e.UserID, "account")
	}
}

// Start запускает HTTP сервер с graceful shutdown
func (s *Server) Start() error {
	address := s.cfg.Server.Address()

	s.httpServer = &http.Server{
		Addr:           address,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go s.consumeSessionEvents()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("HTTP сервер запущен на %s", address)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("ошибка запуска HTTP сервера: %w", err)
		}
	}()

	var startErr error
	select {
	case startErr = <-serverErr:
		log.WithError(startErr).Error("ошибка запуска сервера")
	case sig := <-quit:
		log.Infof("Получен сигнал %v для остановки сервера...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := multierr.Append(startErr, s.Shutdown(ctx))
	if err == nil {
		log.Info("HTTP сервер успешно остановлен")
	}
	return err
}

// Shutdown останавливает HTTP сервер и рассылку событий сессий.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			err = multierr.Append(err, fmt.Errorf("ошибка при остановке сервера: %w", shutdownErr))
		}
	}
	s.stopSub()
	s.hub.Close()
	return err
}

// GetRouter возвращает роутер (для тестирования)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// writeNotifier сбрасывает кэш статистики и считает записи данных.
type writeNotifier struct {
	stats   statsuc.Service
	metrics *metrics.Manager
}

func (n *writeNotifier) UserDataChanged(userID uuid.UUID, kind string) {
	n.stats.UserDataChanged(userID, kind)
	n.metrics.RecordWrite(userID, kind)
}
