package dto

import (
	"taskManager/internal/models"
	"taskManager/internal/service"
	"time"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r RegisterRequest) ToService() service.RegisterRequest {
	return service.RegisterRequest{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskRequest используется и для создания, и для полного обновления задачи.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (r TaskRequest) ToModel() models.TaskRequest {
	return models.TaskRequest{
		Title:       r.Title,
		Description: r.Description,
		Priority:    models.Priority(r.Priority),
		Status:      models.Status(r.Status),
		DueDate:     r.DueDate,
		CategoryID:  r.CategoryID,
		Tags:        r.Tags,
	}
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (r CategoryRequest) ToModel() models.CategoryRequest {
	return models.CategoryRequest{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
	}
}

type TaskResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CategoryID   *int64     `json:"category_id,omitempty"`
	CategoryName *string    `json:"category_name,omitempty"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	IsOverdue    bool       `json:"is_overdue"`
}

func FromTask(t *models.TaskItem, now time.Time) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		DueDate:      t.DueDate,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Tags:         t.TagNames(),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		IsOverdue:    t.IsOverdue(now),
	}
}

func FromTaskList(tasks []*models.TaskItem, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type TaskPage struct {
	Items      []TaskResponse `json:"items"`
	TotalCount int            `json:"total_count"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
}

func FromTaskPage(page *models.Page[*models.TaskItem], now time.Time) TaskPage {
	return TaskPage{
		Items:      FromTaskList(page.Items, now),
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}

type CategoryResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func FromCategory(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromCategoryList(categories []*models.Category) []CategoryResponse {
	result := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = FromCategory(c)
	}
	return result
}
