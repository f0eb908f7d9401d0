package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	uows repository.UnitOfWorkFactory
	settings
}

func NewTaskService(uows repository.UnitOfWorkFactory, options ...Option) *TaskService {
	return &TaskService{
		uows:     uows,
		settings: newSettings(options),
	}
}

func (s *TaskService) GetByID(ctx context.Context, id, requesterID int64) (*models.TaskItem, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	return s.owned(ctx, uow, id, requesterID)
}

// List возвращает страницу задач владельца, свежие первыми, и общее число его задач.
func (s *TaskService) List(ctx context.Context, requesterID int64, pageNumber, pageSize int) (*models.Page[*models.TaskItem], error) {
	if pageNumber < 1 {
		return nil, NewValidationError("page_number", "должен быть не меньше 1")
	}
	if pageSize < 1 {
		return nil, NewValidationError("page_size", "должен быть не меньше 1")
	}
	if pageNumber-1 > math.MaxInt/pageSize {
		return nil, NewValidationError("page_number", "слишком большой номер страницы")
	}

	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	total, err := uow.Tasks().CountByOwner(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("подсчёт задач: %w", err)
	}
	tasks, err := uow.Tasks().ListByOwner(ctx, requesterID, (pageNumber-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	return &models.Page[*models.TaskItem]{
		Items:      tasks,
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}

func (s *TaskService) GetByStatus(ctx context.Context, requesterID int64, status models.Status) ([]*models.TaskItem, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "допустимы todo, in_progress, done")
	}
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	tasks, err := uow.Tasks().GetByStatus(ctx, requesterID, status)
	if err != nil {
		return nil, fmt.Errorf("получение задач по статусу: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetByCategory(ctx context.Context, requesterID, categoryID int64) ([]*models.TaskItem, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	tasks, err := uow.Tasks().GetByCategory(ctx, requesterID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("получение задач по категории: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetByPriority(ctx context.Context, requesterID int64, priority models.Priority) ([]*models.TaskItem, error) {
	if !priority.Valid() {
		return nil, NewValidationError("priority", "допустимы low, medium, high")
	}
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	tasks, err := uow.Tasks().GetByPriority(ctx, requesterID, priority)
	if err != nil {
		return nil, fmt.Errorf("получение задач по приоритету: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetOverdue(ctx context.Context, requesterID int64) ([]*models.TaskItem, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	tasks, err := uow.Tasks().GetOverdue(ctx, requesterID, s.now())
	if err != nil {
		return nil, fmt.Errorf("получение просроченных задач: %w", err)
	}
	return tasks, nil
}

// Create сохраняет задачу и её теги одной транзакцией.
func (s *TaskService) Create(ctx context.Context, req models.TaskRequest, ownerID int64) (*models.TaskItem, error) {
	if err := validateEnums(req); err != nil {
		return nil, err
	}

	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	task := &models.TaskItem{
		Model:  models.Model{CreatedAt: s.now()},
		UserID: ownerID,
	}
	for _, opt := range fromRequest(req) {
		opt(task)
	}
	if err := s.attachCategory(ctx, uow, task, true); err != nil {
		return nil, err
	}

	if err := uow.Tasks().Create(ctx, task); err != nil {
		logger.Error("Service: Не удалось создать задачу", err, zap.Int64("user_id", ownerID))
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	if err := s.attachTags(ctx, uow, task, req.Tags); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", task.ID), zap.Int64("user_id", ownerID))
	return task, nil
}

// Update заменяет все изменяемые поля и весь набор тегов.
func (s *TaskService) Update(ctx context.Context, id int64, req models.TaskRequest, requesterID int64) (*models.TaskItem, error) {
	if err := validateEnums(req); err != nil {
		return nil, err
	}

	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	task, err := s.owned(ctx, uow, id, requesterID)
	if err != nil {
		return nil, err
	}
	previous := task.CategoryID
	for _, opt := range fromRequest(req) {
		opt(task)
	}
	if err := s.attachCategory(ctx, uow, task, !sameCategory(previous, task.CategoryID)); err != nil {
		return nil, err
	}

	if err := uow.Tasks().Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceTask, id)
		}
		logger.Error("Service: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	if err := s.attachTags(ctx, uow, task, req.Tags); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	logger.Info("Service: Задача обновлена", zap.Int64("task_id", id))
	return task, nil
}

// Delete мягко удаляет задачу; теги и категория остаются привязанными.
func (s *TaskService) Delete(ctx context.Context, id, requesterID int64) error {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	task, err := s.owned(ctx, uow, id, requesterID)
	if err != nil {
		return err
	}
	if err := uow.Tasks().SoftDelete(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewNotFound(ResourceTask, id)
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}

	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

// owned сначала проверяет существование, затем владельца: чужая задача даёт Unauthorized, а не NotFound.
func (s *TaskService) owned(ctx context.Context, uow repository.UnitOfWork, id, requesterID int64) (*models.TaskItem, error) {
	task, err := uow.Tasks().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(ResourceTask, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	if task.UserID != requesterID {
		logger.Warn("Service: Доступ к чужой задаче",
			zap.Int64("target_id", id),
			zap.Int64("requester_id", requesterID))
		return nil, NewUnauthorized(ResourceTask, id)
	}
	return task, nil
}

// attachCategory заполняет имя категории. Новая ссылка обязана указывать на видимую категорию;
// уже сохранённая ссылка на удалённую категорию остаётся и читается как "без категории".
func (s *TaskService) attachCategory(ctx context.Context, uow repository.UnitOfWork, task *models.TaskItem, required bool) error {
	task.CategoryName = nil
	if task.CategoryID == nil {
		return nil
	}
	category, err := uow.Categories().GetByID(ctx, *task.CategoryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("получение категории: %w", err)
		}
		if required {
			return NewNotFound(ResourceCategory, *task.CategoryID)
		}
		return nil
	}
	task.CategoryName = &category.Name
	return nil
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *TaskService) attachTags(ctx context.Context, uow repository.UnitOfWork, task *models.TaskItem, names []string) error {
	names = normalizeTagNames(names)
	tags := make([]models.Tag, 0, len(names))
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		tag, err := uow.Tags().GetOrCreate(ctx, name)
		if err != nil {
			logger.Error("Service: Не удалось получить тег", err, zap.String("tag", name))
			return fmt.Errorf("тег %q: %w", name, err)
		}
		tags = append(tags, *tag)
		ids = append(ids, tag.ID)
	}
	if err := uow.Tasks().ReplaceTags(ctx, task.ID, ids); err != nil {
		return fmt.Errorf("привязка тегов: %w", err)
	}
	task.Tags = tags
	return nil
}

// normalizeTagNames обрезает пробелы, выбрасывает пустые имена и повторы, сохраняя порядок.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

func validateEnums(req models.TaskRequest) error {
	if req.Priority != "" && !req.Priority.Valid() {
		return NewValidationError("priority", "допустимы low, medium, high")
	}
	if req.Status != "" && !req.Status.Valid() {
		return NewValidationError("status", "допустимы todo, in_progress, done")
	}
	return nil
}
