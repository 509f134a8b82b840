package main

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/mailer"
	"fittrack/internal/server"
	"fittrack/pkg/logger"
	mailersvc "fittrack/pkg/mailer"
)

//	@title						FitTrack API
//	@version					1.0
//	@description				API дневника тренировок и веса.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger.Setup(logger.SetupParams{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		ToStdout:    cfg.Log.ToStdout,
		JSON:        cfg.Log.JSON,
		Environment: cfg.AppEnv,
		SentryDSN:   cfg.Log.SentryDSN,
	})
	defer sentry.Flush(2 * time.Second)

	log.Info("FitTrack server starting...")
	log.Infof("База данных: %s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	db, err := database.NewConnection(&cfg.Database, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	if err := migrate(&cfg.Database); err != nil {
		_ = db.Close()
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := pingRedis(redisClient); err != nil {
		log.WithError(err).Warn("Redis недоступен при старте")
	}

	var sender mailersvc.EmailSender
	if cfg.Email.Enabled() {
		sender = mailer.NewSMTPSender(&cfg.Email, logger.Default())
	} else {
		log.Warn("SMTP не настроен, письма пишутся в лог")
		sender = mailer.NewLogSender(logger.Default())
	}

	srv := server.NewServer(cfg, server.Deps{
		Storage:     server.NewPostgresStorage(db, redisClient),
		EmailSender: sender,
		DB:          db,
		Redis:       redisClient,
	})

	runErr := srv.Start()
	closeErr := multierr.Combine(db.Close(), redisClient.Close())
	if err := multierr.Append(runErr, closeErr); err != nil {
		log.WithError(err).Error("Сервер остановлен с ошибкой")
		sentry.Flush(2 * time.Second)
		log.Exit(1)
	}
}

// migrate применяет недостающие миграции перед запуском сервера.
// Мигратор открывает собственное подключение и закрывает его по завершении.
func migrate(cfg *config.DatabaseConfig) error {
	migrator, err := database.NewMigratorFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия мигратора")
		}
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, database.ErrNoChange) {
		return err
	}
	return nil
}

func pingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
