package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/pkg/logger"
)

func main() {
	var (
		up      = flag.Bool("up", false, "Применить все доступные миграции (по умолчанию)")
		down    = flag.Bool("down", false, "Откатить последнюю миграцию")
		steps   = flag.Int("steps", 0, "Применить/откатить N миграций (положительное число - вверх, отрицательное - вниз)")
		force   = flag.Int("force", -1, "Пометить схему указанной версией без выполнения миграций")
		version = flag.Bool("version", false, "Показать текущую версию миграции")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Использование: %s [опции]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Опции:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nПримеры:\n")
		fmt.Fprintf(os.Stderr, "  %s              # Применить все миграции\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -down        # Откатить последнюю миграцию\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -steps -2    # Откатить 2 миграции\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -force 3     # Снять \"грязное\" состояние, пометив версию 3\n", os.Args[0])
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	logger.Setup(logger.SetupParams{
		Level:       cfg.Log.Level,
		ToStdout:    true,
		JSON:        cfg.Log.JSON,
		Environment: cfg.AppEnv,
	})

	actions := 0
	for _, set := range []bool{*up, *down, *steps != 0, *force >= 0, *version} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		log.Fatal("Можно указать только одно действие за раз")
	}

	migrator, err := database.NewMigratorFromConfig(&cfg.Database)
	if err != nil {
		log.Fatalf("Ошибка создания мигратора: %v", err)
	}

	err = run(migrator, *down, *steps, *force, *version)
	if closeErr := migrator.Close(); closeErr != nil {
		log.WithError(closeErr).Warn("Ошибка закрытия мигратора")
	}
	if err != nil {
		log.WithField("db", cfg.Database.DBName).Error(err)
		os.Exit(1)
	}
}

func run(migrator *database.Migrator, down bool, steps, force int, version bool) error {
	var err error
	switch {
	case version:
		return printVersion(migrator)
	case force >= 0:
		return migrator.Force(force)
	case down:
		err = migrator.Down()
	case steps != 0:
		err = migrator.Steps(steps)
	default:
		err = migrator.Up()
	}

	switch {
	case errors.Is(err, database.ErrNoChange):
		log.Info("Нет миграций для применения. База данных уже актуальна.")
		return nil
	case errors.Is(err, database.ErrDirtyState):
		return fmt.Errorf("%w: выполните -force с последней успешной версией", err)
	}
	return err
}

func printVersion(migrator *database.Migrator) error {
	v, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	switch {
	case v == 0:
		log.Info("Версия: нет примененных миграций")
	case dirty:
		return fmt.Errorf("версия %d: %w", v, database.ErrDirtyState)
	default:
		log.Infof("Версия: %d", v)
	}
	return nil
}
