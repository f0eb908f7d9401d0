package sqlite

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/migrations"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const migrationTable = "schema_migrations"

// Migrate применяет *.up.sql из встроенной схемы, каждый файл не больше одного раза.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return applyMigrations(ctx, db, migrations.SQLite, migrations.SQLiteDir)
}

func applyMigrations(ctx context.Context, db *sqlx.DB, migrationFS fs.FS, root string) error {
	logger.Info("Repository: Применение миграций SQLite")

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("чтение каталога миграций: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	create := "CREATE TABLE IF NOT EXISTS " + migrationTable + " (name TEXT PRIMARY KEY, applied_at DATETIME NOT NULL)"
	if _, err := db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("таблица миграций: %w", err)
	}

	for _, file := range files {
		var applied int
		if err := db.GetContext(ctx, &applied, "SELECT COUNT(*) FROM "+migrationTable+" WHERE name = ?", file); err != nil {
			return fmt.Errorf("проверка миграции %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, root+"/"+file)
		if err != nil {
			return fmt.Errorf("чтение миграции %s: %w", file, err)
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("транзакция миграции %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			logger.Error("Repository: Не удалось применить миграцию", err, zap.String("file", file))
			return fmt.Errorf("применение миграции %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
			file, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("запись миграции %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("фиксация миграции %s: %w", file, err)
		}
		logger.Info("Repository: Миграция применена", zap.String("file", file))
	}
	return nil
}
