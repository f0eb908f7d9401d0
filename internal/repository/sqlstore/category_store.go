package sqlstore

import (
	"context"
	"strings"
	"taskManager/internal/models"
)

type CategoryStore struct {
	EntityStore[models.Category, *models.Category]
}

func newCategoryStore(sess *session) *CategoryStore {
	return &CategoryStore{newEntityStore[models.Category, *models.Category](sess, table{
		name:    "categories",
		orderBy: "name, id",
		columns: []string{"name", "description", "color"},
	})}
}

// SearchByName ищет вхождение подстроки без учёта регистра.
func (s *CategoryStore) SearchByName(ctx context.Context, fragment string) ([]*models.Category, error) {
	pattern := "%" + escapeLike(strings.ToLower(fragment)) + "%"
	return s.selectMany(ctx, "search_by_name", s.visible(`LOWER(name) LIKE ? ESCAPE '\'`), "", pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
