package models

// Tag общий для всех пользователей; имя уникально с учётом регистра.
type Tag struct {
	Model
	Name string `json:"name" db:"name"`
}
