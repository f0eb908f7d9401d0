package repository

import (
	"context"
	"taskManager/internal/models"
	"time"
)

// Store: базовые операции над одной сущностью. Все чтения, кроме GetByIDWithDeleted,
// пропускают мягко удалённые строки.
type Store[T any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	GetByIDWithDeleted(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context) ([]*T, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	SoftDelete(ctx context.Context, item *T) error
}

type UserRepository interface {
	Store[models.User]
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type TaskRepository interface {
	Store[models.TaskItem]
	ListByOwner(ctx context.Context, userID int64, offset, limit int) ([]*models.TaskItem, error)
	CountByOwner(ctx context.Context, userID int64) (int, error)
	GetByStatus(ctx context.Context, userID int64, status models.Status) ([]*models.TaskItem, error)
	GetByCategory(ctx context.Context, userID, categoryID int64) ([]*models.TaskItem, error)
	GetByPriority(ctx context.Context, userID int64, priority models.Priority) ([]*models.TaskItem, error)
	GetOverdue(ctx context.Context, userID int64, now time.Time) ([]*models.TaskItem, error)
	// ReplaceTags заменяет весь набор тегов задачи, а не дополняет его
	ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error
}

type CategoryRepository interface {
	Store[models.Category]
	SearchByName(ctx context.Context, fragment string) ([]*models.Category, error)
}

type TagRepository interface {
	Store[models.Tag]
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// GetOrCreate возвращает существующий тег или создаёт новый; при гонке
	// проигравшая сторона перечитывает строку победителя.
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
	GetByTaskID(ctx context.Context, taskID int64) ([]models.Tag, error)
}

// UnitOfWork объединяет хранилища одной транзакционной границей.
// Запись без Begin открывает неявную транзакцию, которую фиксирует SaveChanges.
// Внутри Begin/Commit SaveChanges ничего не фиксирует. Close откатывает всё незафиксированное.
type UnitOfWork interface {
	Users() UserRepository
	Tasks() TaskRepository
	Categories() CategoryRepository
	Tags() TagRepository

	Begin(ctx context.Context) error
	Commit() error
	Rollback() error
	SaveChanges(ctx context.Context) error
	Close() error
}

type UnitOfWorkFactory interface {
	NewUnitOfWork() UnitOfWork
}
