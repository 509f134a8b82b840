package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Значения секретов по умолчанию. В production их использование запрещено.
const (
	defaultAccessSecret  = "dev-access-secret-change-me"
	defaultRefreshSecret = "dev-refresh-secret-change-me"
)

// Config хранит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Email    EmailConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Log      LogConfig
	Stats    StatsConfig
	AppEnv   string // Окружение приложения: development, production, etc.
}

// ServerConfig хранит конфигурацию сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig хранит конфигурацию базы данных
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int           // Максимальное количество открытых соединений
	MaxIdleConns    int           // Максимальное количество неактивных соединений
	ConnMaxLifetime time.Duration // Максимальное время жизни соединения
	ConnMaxIdleTime time.Duration // Максимальное время простоя соединения
}

// JWTConfig хранит настройки подписи и времени жизни токенов.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// CORSConfig хранит настройки Cross-Origin Resource Sharing.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// EmailConfig хранит настройки SMTP и кодов подтверждения.
type EmailConfig struct {
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	FromEmail       string
	VerificationTTL time.Duration // Время жизни кода подтверждения
	MaxAttempts     int           // Максимальное количество попыток ввода кода
}

// Enabled сообщает, настроена ли отправка писем через SMTP.
func (e *EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

// AuthConfig хранит настройки email-флоу аутентификации.
type AuthConfig struct {
	RedirectURL      string // Куда ведёт ссылка из письма подтверждения email
	ResetRedirectURL string // Куда ведёт ссылка из письма сброса пароля
	RateLimitPerMin  int    // Лимит запросов к /auth в минуту на IP (0: без ограничения)
}

// RedisConfig хранит настройки подключения к Redis (хранилище сессий, rate limit).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig хранит настройки логирования.
type LogConfig struct {
	Level     string
	File      string // Пустая строка: только stdout
	ToStdout  bool
	JSON      bool
	SentryDSN string // Пустая строка: Sentry отключён
}

// StatsConfig хранит настройки статистики и её кэширования.
type StatsConfig struct {
	WeeklyGoal  int           // Цель по количеству тренировок в неделю
	MonthsBack  int           // Сколько прошлых месяцев показывать в гистограмме
	CacheSizeMB int           // Размер кэша статистики в мегабайтах
	CacheTTL    time.Duration // Время жизни записи в кэше
}

// DSN возвращает строку подключения к базе данных
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Address возвращает адрес сервера (host:port)
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// IsProduction сообщает, запущено ли приложение в production окружении.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл (если существует)
	// В production переменные окружения должны быть установлены напрямую
	_ = godotenv.Load()

	cfg := &Config{}

	// Загружаем конфигурацию сервера
	cfg.Server.Host = getEnv("SERVER_HOST", "localhost")
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")

	// Загружаем конфигурацию базы данных
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.DBName = getEnv("DB_NAME", "fittrack")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Загружаем настройки пула соединений
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	cfg.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.Database.ConnMaxIdleTime = getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute)

	// JWT
	cfg.JWT.AccessSecret = getEnv("JWT_ACCESS_SECRET", defaultAccessSecret)
	cfg.JWT.RefreshSecret = getEnv("JWT_REFRESH_SECRET", defaultRefreshSecret)
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", "fittrack")
	cfg.JWT.AccessTTL = getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute)
	cfg.JWT.RefreshTTL = getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour)

	// CORS
	cfg.CORS.AllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil)
	cfg.CORS.AllowedMethods = getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	cfg.CORS.AllowedHeaders = getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization"})
	cfg.CORS.ExposedHeaders = getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"})
	cfg.CORS.AllowCredentials = getEnvAsBool("CORS_ALLOW_CREDENTIALS", true)
	cfg.CORS.MaxAge = getEnvAsDuration("CORS_MAX_AGE", 12*time.Hour)

	// Email
	cfg.Email.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.Email.SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	cfg.Email.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.Email.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.Email.FromEmail = getEnv("SMTP_FROM", "no-reply@fittrack.local")
	cfg.Email.VerificationTTL = getEnvAsDuration("EMAIL_VERIFICATION_TTL", 15*time.Minute)
	cfg.Email.MaxAttempts = getEnvAsInt("EMAIL_VERIFICATION_MAX_ATTEMPTS", 5)

	// Auth
	cfg.Auth.RedirectURL = getEnv("AUTH_REDIRECT_URL", "http://localhost:3000/auth/callback")
	cfg.Auth.ResetRedirectURL = getEnv("AUTH_RESET_REDIRECT_URL", "http://localhost:3000/reset-password")
	cfg.Auth.RateLimitPerMin = getEnvAsInt("AUTH_RATE_LIMIT_PER_MIN", 30)

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// Логирование
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.File = getEnv("LOG_FILE", "")
	cfg.Log.ToStdout = getEnvAsBool("LOG_TO_STDOUT", true)
	cfg.Log.JSON = getEnvAsBool("LOG_JSON", false)
	cfg.Log.SentryDSN = getEnv("SENTRY_DSN", "")

	// Статистика
	cfg.Stats.WeeklyGoal = getEnvAsInt("STATS_WEEKLY_GOAL", 3)
	cfg.Stats.MonthsBack = getEnvAsInt("STATS_MONTHS_BACK", 5)
	cfg.Stats.CacheSizeMB = getEnvAsInt("STATS_CACHE_SIZE_MB", 16)
	cfg.Stats.CacheTTL = getEnvAsDuration("STATS_CACHE_TTL", time.Minute)

	// Загружаем окружение приложения
	cfg.AppEnv = getEnv("APP_ENV", "development")

	// Валидируем конфигурацию
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("SERVER_HOST не может быть пустым")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT не может быть пустым")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST не может быть пустым")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER не может быть пустым")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME не может быть пустым")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET и JWT_REFRESH_SECRET не могут быть пустыми")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL и JWT_REFRESH_TTL должны быть положительными")
	}
	if c.IsProduction() && (c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		return fmt.Errorf("в production необходимо задать JWT_ACCESS_SECRET и JWT_REFRESH_SECRET")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR не может быть пустым")
	}
	if c.Email.MaxAttempts <= 0 {
		return fmt.Errorf("EMAIL_VERIFICATION_MAX_ATTEMPTS должен быть положительным")
	}
	if c.Stats.WeeklyGoal <= 0 {
		return fmt.Errorf("STATS_WEEKLY_GOAL должен быть положительным")
	}
	if c.Stats.MonthsBack < 0 {
		return fmt.Errorf("STATS_MONTHS_BACK не может быть отрицательным")
	}
	return nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsBool получает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// getEnvAsDuration получает переменную окружения как time.Duration или возвращает значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getEnvAsSlice получает переменную окружения как список значений, разделённых запятой
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
