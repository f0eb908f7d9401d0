package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type TagStore struct {
	EntityStore[models.Tag, *models.Tag]
}

func newTagStore(sess *session) *TagStore {
	return &TagStore{newEntityStore[models.Tag, *models.Tag](sess, table{
		name:    "tags",
		orderBy: "name",
		columns: []string{"name"},
	})}
}

func (s *TagStore) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.getOne(ctx, "get_by_name", s.visible("name = ?"), name)
}

// GetOrCreate вставляет тег через ON CONFLICT DO NOTHING и перечитывает строку.
// Конкурентная вставка того же имени не ломает транзакцию: проигравший
// получает строку победителя. Мягко удалённый тег восстанавливается.
func (s *TagStore) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	tag, err := s.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	start := time.Now()
	defer observe("tags.get_or_create", start)

	q, err := s.sess.writer(ctx)
	if err != nil {
		return nil, err
	}
	now := s.sess.db.now()
	insert := q.Rebind("INSERT INTO tags (name, created_at, is_deleted) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING")
	res, err := q.ExecContext(ctx, insert, name, now, false)
	if err != nil {
		return nil, fmt.Errorf("вставка тега: %w", s.sess.db.translate(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.Debug("Repository: Тег уже создан параллельно, перечитываем", zap.String("tag", name))
	}

	tag, err = s.getOne(ctx, "get_by_name_with_deleted", "name = ?", name)
	if err != nil {
		return nil, err
	}
	if tag.IsDeleted {
		revive := q.Rebind("UPDATE tags SET is_deleted = ?, deleted_at = NULL, updated_at = ? WHERE id = ?")
		if _, err := q.ExecContext(ctx, revive, false, now, tag.ID); err != nil {
			return nil, fmt.Errorf("восстановление тега: %w", s.sess.db.translate(err))
		}
		tag.IsDeleted = false
		tag.DeletedAt = nil
		tag.Touch(now)
	}
	return tag, nil
}

func (s *TagStore) GetByTaskID(ctx context.Context, taskID int64) ([]models.Tag, error) {
	byTask, err := s.forTasks(ctx, []int64{taskID})
	if err != nil {
		return nil, err
	}
	tags := byTask[taskID]
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

type taskTag struct {
	TaskID int64 `db:"task_id"`
	models.Tag
}

// forTasks загружает теги для набора задач одним запросом.
func (s *TagStore) forTasks(ctx context.Context, taskIDs []int64) (map[int64][]models.Tag, error) {
	result := make(map[int64][]models.Tag, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	start := time.Now()
	defer observe("tags.for_tasks", start)

	query, args, err := sqlx.In(`SELECT tt.task_id, g.* FROM task_tags tt
		JOIN tags g ON g.id = tt.tag_id
		WHERE tt.task_id IN (?) AND `+notDeleted("g")+`
		ORDER BY tt.task_id, g.name`, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("подготовка выборки тегов: %w", err)
	}
	q := s.sess.reader()
	var rows []taskTag
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("выборка тегов задач: %w", s.sess.db.translate(err))
	}
	for _, row := range rows {
		normalize(row.Tag.Base())
		result[row.TaskID] = append(result[row.TaskID], row.Tag)
	}
	return result, nil
}
