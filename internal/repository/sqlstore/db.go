// Package sqlstore реализует хранилища и unit of work поверх sqlx.
// Диалект (Postgres или SQLite) подставляется драйверным пакетом.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"taskManager/internal/logger"
	"taskManager/internal/repository"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

// Dialect описывает то, чем базы отличаются для хранилища: распознавание нарушений ограничений.
type Dialect struct {
	Name                  string
	IsUniqueViolation     func(error) bool
	IsForeignKeyViolation func(error) bool
}

type DB struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time
	closers []func() error
}

type Option func(*DB)

func WithClock(now func() time.Time) Option {
	return func(d *DB) {
		if now != nil {
			d.now = now
		}
	}
}

// WithCloser регистрирует ресурс, который закрывается вместе с DB (например пул pgx).
func WithCloser(fn func() error) Option {
	return func(d *DB) {
		if fn != nil {
			d.closers = append(d.closers, fn)
		}
	}
}

func New(db *sqlx.DB, dialect Dialect, options ...Option) *DB {
	d := &DB{
		db:      db,
		dialect: dialect,
		now:     Now,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Now: текущее время в UTC с точностью до микросекунды, как хранит Postgres.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (d *DB) NewUnitOfWork() repository.UnitOfWork {
	return newUnitOfWork(d)
}

func (d *DB) SQL() *sqlx.DB {
	return d.db
}

func (d *DB) Dialect() string {
	return d.dialect.Name
}

func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err, zap.String("dialect", d.dialect.Name))
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	err := d.db.Close()
	for _, fn := range d.closers {
		err = multierr.Append(err, fn())
	}
	logger.Info("Repository: Соединения с базой закрыты", zap.String("dialect", d.dialect.Name))
	return err
}

// translate превращает ошибки драйвера в ошибки репозитория.
// Исходная ошибка попадает только в текст, чтобы тип драйвера не утекал наружу.
func (d *DB) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case d.dialect.IsUniqueViolation != nil && d.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	case d.dialect.IsForeignKeyViolation != nil && d.dialect.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", repository.ErrInvalidReference, err)
	}
	return err
}

func observe(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("op", op), zap.Duration("elapsed", elapsed))
	}
}
