package models

const DefaultCategoryColor = "#000000"

type Category struct {
	Model
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Color       string `json:"color" db:"color"`
}

type CategoryRequest struct {
	Name        string
	Description string
	Color       string
}
