package models

import "time"

// Model: общие поля всех сущностей, встраивается в каждую из них.
type Model struct {
	ID        int64      `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	IsDeleted bool       `json:"-" db:"is_deleted"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// Base даёт хранилищу доступ к общим полям через встраивание.
func (m *Model) Base() *Model {
	return m
}

// Touch проставляет время изменения.
func (m *Model) Touch(now time.Time) {
	m.UpdatedAt = &now
}

// MarkDeleted выполняет мягкое удаление: строка остаётся в базе, но скрыта от чтения.
func (m *Model) MarkDeleted(now time.Time) {
	m.IsDeleted = true
	m.DeletedAt = &now
	m.UpdatedAt = &now
}

// Page: окно выборки вместе с общим числом строк под фильтром.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}
