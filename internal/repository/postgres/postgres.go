// Package postgres открывает хранилище поверх пула pgx и накатывает схему через golang-migrate.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/migrations"
	"taskManager/internal/repository/sqlstore"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DriverName = "pgx"

	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

var Dialect = sqlstore.Dialect{
	Name:                  "postgres",
	IsUniqueViolation:     IsUniqueViolation,
	IsForeignKeyViolation: IsForeignKeyViolation,
}

type Config struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	// ConnectTimeout: сколько ждать базу при старте, с повторами
	ConnectTimeout time.Duration
	Migrate        bool
}

type Storage struct {
	*sqlstore.DB
	pool *pgxpool.Pool
	url  string
}

func New(ctx context.Context, cfg Config, options ...sqlstore.Option) (*Storage, error) {
	config, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= config.MaxConns {
		config.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := ping(ctx, pool, cfg.ConnectTimeout); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Успешное создание подключения к PostgreSQL")

	s := &Storage{pool: pool, url: cfg.URL}
	if cfg.Migrate {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), DriverName)
	options = append(options, sqlstore.WithCloser(func() error {
		pool.Close()
		return nil
	}))
	s.DB = sqlstore.New(db, Dialect, options...)
	return s, nil
}

// ping ждёт базу с экспоненциальной задержкой: при старте в docker-compose она поднимается дольше сервиса.
func ping(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	if timeout <= 0 {
		return pool.Ping(ctx)
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = timeout

	return backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		logger.Warn("Repository: PostgreSQL недоступен, повтор", zap.Error(err), zap.Duration("wait", wait))
	})
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций PostgreSQL")

	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Не удалось применить миграции", err)
		return multierr.Append(fmt.Errorf("применение миграций: %w", err), closeMigrator(m))
	}

	logger.Info("Repository: Миграции применены")
	return closeMigrator(m)
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	m, err := s.migrator()
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Не удалось откатить миграции", err)
		return multierr.Append(fmt.Errorf("откат миграций: %w", err), closeMigrator(m))
	}

	logger.Info("Repository: Миграции откачены")
	return closeMigrator(m)
}

func (s *Storage) migrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.Postgres, migrations.PostgresDir)
	if err != nil {
		return nil, fmt.Errorf("источник миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(s.url))
	if err != nil {
		logger.Error("Repository: Ошибка инициализации миграций", err)
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	return multierr.Combine(srcErr, dbErr)
}

// migrateURL переводит DSN в схему драйвера pgx/v5 для golang-migrate.
func migrateURL(url string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(url, prefix) {
			return "pgx5://" + strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
