package handlers

import (
	"context"
	"taskManager/internal/models"
	"taskManager/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
	Profile(ctx context.Context, userID int64) (*service.UserSummary, error)
}

type TaskService interface {
	GetByID(ctx context.Context, id, requesterID int64) (*models.TaskItem, error)
	List(ctx context.Context, requesterID int64, pageNumber, pageSize int) (*models.Page[*models.TaskItem], error)
	GetByStatus(ctx context.Context, requesterID int64, status models.Status) ([]*models.TaskItem, error)
	GetByCategory(ctx context.Context, requesterID, categoryID int64) ([]*models.TaskItem, error)
	GetByPriority(ctx context.Context, requesterID int64, priority models.Priority) ([]*models.TaskItem, error)
	GetOverdue(ctx context.Context, requesterID int64) ([]*models.TaskItem, error)
	Create(ctx context.Context, req models.TaskRequest, ownerID int64) (*models.TaskItem, error)
	Update(ctx context.Context, id int64, req models.TaskRequest, requesterID int64) (*models.TaskItem, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

type CategoryService interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetAll(ctx context.Context) ([]*models.Category, error)
	Search(ctx context.Context, fragment string) ([]*models.Category, error)
	Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id int64, req models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
