// Package testutil собирает хранилище на SQLite в памяти для тестов.
package testutil

import (
	"context"
	"fmt"
	"taskManager/internal/models"
	"taskManager/internal/repository/sqlite"
	"taskManager/internal/repository/sqlstore"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestDB открывает базу в памяти со всеми миграциями и закрывает её по завершении теста.
func NewTestDB(t *testing.T, options ...sqlstore.Option) *sqlstore.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath, true, options...)
	require.NoError(t, err, "создание тестовой базы")

	t.Cleanup(func() {
		assert.NoError(t, db.Close(), "закрытие тестовой базы")
	})
	return db
}

func SeedUser(t *testing.T, db *sqlstore.DB, username string) *models.User {
	t.Helper()
	ctx := context.Background()

	uow := db.NewUnitOfWork()
	defer uow.Close()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
		Role:         models.RoleUser,
	}
	require.NoError(t, uow.Users().Create(ctx, user))
	require.NoError(t, uow.SaveChanges(ctx))
	return user
}

func SeedCategory(t *testing.T, db *sqlstore.DB, name string) *models.Category {
	t.Helper()
	ctx := context.Background()

	uow := db.NewUnitOfWork()
	defer uow.Close()

	category := &models.Category{Name: name, Color: models.DefaultCategoryColor}
	require.NoError(t, uow.Categories().Create(ctx, category))
	require.NoError(t, uow.SaveChanges(ctx))
	return category
}
