package service

import (
	"taskManager/internal/models"
	"time"
)

// TaskOption изменяет одно поле задачи; запрос на создание или обновление
// превращается в набор таких изменений.
type TaskOption func(*models.TaskItem)

func WithTitle(title string) TaskOption {
	return func(task *models.TaskItem) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *models.TaskItem) {
		task.Description = description
	}
}

func WithStatus(status models.Status) TaskOption {
	return func(task *models.TaskItem) {
		task.Status = status
	}
}

func WithPriority(priority models.Priority) TaskOption {
	return func(task *models.TaskItem) {
		task.Priority = priority
	}
}

func WithDueDate(dueDate *time.Time) TaskOption {
	return func(task *models.TaskItem) {
		if dueDate == nil {
			task.DueDate = nil
			return
		}
		utc := dueDate.UTC().Truncate(time.Microsecond)
		task.DueDate = &utc
	}
}

func WithCategory(categoryID *int64) TaskOption {
	return func(task *models.TaskItem) {
		task.CategoryID = categoryID
		task.CategoryName = nil
	}
}

// fromRequest заменяет все изменяемые поля; пустые приоритет и статус получают значения по умолчанию.
func fromRequest(req models.TaskRequest) []TaskOption {
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	return []TaskOption{
		WithTitle(req.Title),
		WithDescription(req.Description),
		WithPriority(priority),
		WithStatus(status),
		WithDueDate(req.DueDate),
		WithCategory(req.CategoryID),
	}
}

type Option func(*settings)

type settings struct {
	now func() time.Time
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

func newSettings(options []Option) settings {
	s := settings{now: defaultNow}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
