package models

import "time"

type TaskItem struct {
	Model
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Priority    Priority   `json:"priority" db:"priority"`
	Status      Status     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	UserID      int64      `json:"user_id" db:"user_id"`
	CategoryID  *int64     `json:"category_id,omitempty" db:"category_id"`

	// имя видимой категории; пусто, если категории нет или она удалена
	CategoryName *string `json:"category_name,omitempty" db:"category_name"`
	Tags         []Tag   `json:"tags" db:"-"`
}

// IsOverdue: срок задан, уже прошёл, а задача не выполнена.
func (t *TaskItem) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusDone
}

// TagNames возвращает имена тегов в порядке их хранения.
func (t *TaskItem) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

type Status string

const StatusTodo Status = "todo"
const StatusInProgress Status = "in_progress"
const StatusDone Status = "done"

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const PriorityLow Priority = "low"
const PriorityMedium Priority = "medium"
const PriorityHigh Priority = "high"

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskRequest: изменяемые поля задачи, одинаковые для создания и обновления.
type TaskRequest struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     *time.Time
	CategoryID  *int64
	Tags        []string
}
