// Package sqlite открывает хранилище на modernc.org/sqlite.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/repository/sqlstore"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverName = "sqlite"
	// MemoryPath: база в памяти, живёт пока открыто соединение
	MemoryPath = ":memory:"
)

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

var Dialect = sqlstore.Dialect{
	Name:                  DriverName,
	IsUniqueViolation:     IsUniqueViolation,
	IsForeignKeyViolation: IsForeignKeyViolation,
}

// Open открывает базу по пути и при необходимости применяет миграции.
// Соединение одно: SQLite сериализует запись, а база в памяти живёт в пределах соединения.
func Open(ctx context.Context, path string, migrate bool, options ...sqlstore.Option) (*sqlstore.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("путь к базе SQLite не задан")
	}

	db, err := sqlx.Open(DriverName, dsn(path))
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("включение внешних ключей: %w", err)
	}

	if migrate {
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("Repository: Успешное подключение к SQLite", zap.String("path", path))
	return sqlstore.New(db, Dialect, options...), nil
}

func dsn(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}
