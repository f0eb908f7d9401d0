package sqlstore

import (
	"context"
	"taskManager/internal/models"
)

type UserStore struct {
	EntityStore[models.User, *models.User]
}

func newUserStore(sess *session) *UserStore {
	return &UserStore{newEntityStore[models.User, *models.User](sess, table{
		name:    "users",
		columns: []string{"username", "email", "password_hash", "first_name", "last_name", "role"},
	})}
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, "get_by_username", s.visible("username = ?"), username)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, "get_by_email", s.visible("email = ?"), email)
}

// UsernameExists учитывает только активных пользователей: имя удалённого можно занять снова.
func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := s.count(ctx, "username = ?", username)
	return n > 0, err
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.count(ctx, "email = ?", email)
	return n > 0, err
}
