package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // database/sql драйвер для отдельного подключения мигратора
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"fittrack/internal/config"
	"fittrack/internal/database/migrations"
)

var (
	// ErrNoChange возвращается, когда нет миграций для применения.
	ErrNoChange = errors.New("no change")

	// ErrDirtyState возвращается, если предыдущая миграция прервалась.
	// Требуется ручное вмешательство (Force).
	ErrDirtyState = errors.New("database is in dirty state")
)

// Migrator управляет версией схемы fittrack через golang-migrate.
// SQL файлы встроены в бинарник (пакет migrations).
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator создает мигратор поверх существующего подключения.
//
// Close мигратора закрывает и переданное подключение, поэтому для
// долгоживущего процесса используйте NewMigratorFromConfig.
func NewMigrator(db *DB) (*Migrator, error) {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения sql.DB: %w", err)
	}
	return newMigrator(sqlDB)
}

// NewMigratorFromConfig открывает для мигратора отдельное подключение.
func NewMigratorFromConfig(cfg *config.DatabaseConfig) (*Migrator, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия подключения: %w", err)
	}
	m, err := newMigrator(sqlDB)
	if err != nil {
		return nil, multierr.Append(err, sqlDB.Close())
	}
	return m, nil
}

func newMigrator(sqlDB *sql.DB) (*Migrator, error) {
	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания драйвера PostgreSQL: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания экземпляра migrate: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Close освобождает источник миграций и подключение.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	return multierr.Combine(sourceErr, dbErr)
}

// Up применяет все недостающие миграции.
// Возвращает ErrNoChange, если схема актуальна, и ErrDirtyState, если
// предыдущий запуск оборвался посреди миграции.
func (m *Migrator) Up() error {
	if _, dirty, err := m.Version(); err != nil {
		return err
	} else if dirty {
		return ErrDirtyState
	}
	return m.run("up", m.m.Up)
}

// Down откатывает последнюю примененную миграцию.
func (m *Migrator) Down() error {
	return m.run("down", func() error { return m.m.Steps(-1) })
}

// Steps применяет (n > 0) или откатывает (n < 0) n миграций.
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("steps %d", n), func() error { return m.m.Steps(n) })
}

func (m *Migrator) run(action string, fn func() error) error {
	if err := fn(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return ErrNoChange
		}
		return fmt.Errorf("migrate %s: %w", action, err)
	}

	version, _, err := m.Version()
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"action": action, "version": version}).Info("миграции применены")
	return nil
}

// Version возвращает текущую версию схемы и флаг "грязного" состояния.
// Если миграции не применялись, версия равна 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка получения версии: %w", err)
	}
	return version, dirty, nil
}

// Force помечает схему версией version без выполнения миграций.
// Используется только для восстановления после ErrDirtyState.
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("ошибка принудительной установки версии %d: %w", version, err)
	}
	log.Warnf("Версия миграции принудительно установлена на %d", version)
	return nil
}
