package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"taskManager/internal/logger"
	"taskManager/internal/repository"

	"github.com/jmoiron/sqlx"
)

// session: общее для всех хранилищ одного unit of work соединение:
// открытая транзакция или пул, если транзакции нет.
type session struct {
	db       *DB
	tx       *sqlx.Tx
	explicit bool
}

func (s *session) reader() sqlx.ExtContext {
	if s.tx != nil {
		return s.tx
	}
	return s.db.db
}

// writer возвращает транзакцию, открывая неявную при первой записи.
func (s *session) writer(ctx context.Context) (sqlx.ExtContext, error) {
	if s.tx == nil {
		if err := s.begin(ctx); err != nil {
			return nil, err
		}
		s.explicit = false
	}
	return s.tx, nil
}

// транзакция привязана к ctx: отмена откатывает её целиком
func (s *session) begin(ctx context.Context) error {
	tx, err := s.db.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *session) reset() {
	s.tx = nil
	s.explicit = false
}

type unitOfWork struct {
	sess       *session
	users      *UserStore
	tasks      *TaskStore
	categories *CategoryStore
	tags       *TagStore
}

func newUnitOfWork(d *DB) *unitOfWork {
	sess := &session{db: d}
	return &unitOfWork{
		sess:       sess,
		users:      newUserStore(sess),
		tasks:      newTaskStore(sess),
		categories: newCategoryStore(sess),
		tags:       newTagStore(sess),
	}
}

func (u *unitOfWork) Users() repository.UserRepository {
	return u.users
}

func (u *unitOfWork) Tasks() repository.TaskRepository {
	return u.tasks
}

func (u *unitOfWork) Categories() repository.CategoryRepository {
	return u.categories
}

func (u *unitOfWork) Tags() repository.TagRepository {
	return u.tags
}

// Begin открывает явную транзакцию. Если неявная уже открыта записью,
// она становится явной и её изменения фиксируются только через Commit.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.sess.tx != nil {
		if u.sess.explicit {
			return repository.ErrTransactionActive
		}
		u.sess.explicit = true
		return nil
	}
	if err := u.sess.begin(ctx); err != nil {
		return err
	}
	u.sess.explicit = true
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.sess.tx == nil {
		return repository.ErrNoTransaction
	}
	err := u.sess.tx.Commit()
	u.sess.reset()
	if err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", u.sess.db.translate(err))
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.sess.tx == nil {
		return nil
	}
	err := u.sess.tx.Rollback()
	u.sess.reset()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("откат транзакции: %w", err)
	}
	return nil
}

// SaveChanges фиксирует неявную транзакцию. Явную оставляет открытой до Commit.
func (u *unitOfWork) SaveChanges(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.sess.tx == nil || u.sess.explicit {
		return nil
	}
	return u.Commit()
}

func (u *unitOfWork) Close() error {
	return u.Rollback()
}
