package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

// Категории общие для всех пользователей, проверки владельца нет.
type CategoryService struct {
	uows repository.UnitOfWorkFactory
	settings
}

func NewCategoryService(uows repository.UnitOfWorkFactory, options ...Option) *CategoryService {
	return &CategoryService{
		uows:     uows,
		settings: newSettings(options),
	}
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	return s.get(ctx, uow, id)
}

// GetAll возвращает неудалённые категории по имени.
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	categories, err := uow.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение категорий: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Search(ctx context.Context, fragment string) ([]*models.Category, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	categories, err := uow.Categories().SearchByName(ctx, strings.TrimSpace(fragment))
	if err != nil {
		return nil, fmt.Errorf("поиск категорий: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	category := &models.Category{
		Model:       models.Model{CreatedAt: s.now()},
		Name:        req.Name,
		Description: req.Description,
		Color:       colorOrDefault(req.Color),
	}
	if err := uow.Categories().Create(ctx, category); err != nil {
		logger.Error("Service: Не удалось создать категорию", err)
		return nil, fmt.Errorf("создание категории: %w", err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("создание категории: %w", err)
	}

	logger.Info("Service: Категория создана", zap.Int64("category_id", category.ID))
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req models.CategoryRequest) (*models.Category, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	category, err := s.get(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Description = req.Description
	category.Color = colorOrDefault(req.Color)

	if err := uow.Categories().Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceCategory, id)
		}
		return nil, fmt.Errorf("обновление категории: %w", err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("обновление категории: %w", err)
	}
	return category, nil
}

// Delete мягко удаляет категорию; задачи сохраняют ссылку на неё.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	category, err := s.get(ctx, uow, id)
	if err != nil {
		return err
	}
	if err := uow.Categories().SoftDelete(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound(ResourceCategory, id)
		}
		return fmt.Errorf("удаление категории: %w", err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("удаление категории: %w", err)
	}

	logger.Info("Service: Категория удалена", zap.Int64("category_id", id))
	return nil
}

func (s *CategoryService) get(ctx context.Context, uow repository.UnitOfWork, id int64) (*models.Category, error) {
	category, err := uow.Categories().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Категория не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(ResourceCategory, id)
		}
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return category, nil
}

func colorOrDefault(color string) string {
	if strings.TrimSpace(color) == "" {
		return models.DefaultCategoryColor
	}
	return color
}
