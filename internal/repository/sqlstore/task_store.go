package sqlstore

import (
	"context"
	"fmt"
	"taskManager/internal/models"
	"time"
)

type TaskStore struct {
	EntityStore[models.TaskItem, *models.TaskItem]
	tags *TagStore
}

func newTaskStore(sess *session) *TaskStore {
	return &TaskStore{
		EntityStore: newEntityStore[models.TaskItem, *models.TaskItem](sess, table{
			name:  "tasks",
			alias: "t",
			selectFrom: "SELECT t.*, c.name AS category_name FROM tasks t " +
				"LEFT JOIN categories c ON c.id = t.category_id AND " + notDeleted("c"),
			orderBy:   "t.created_at DESC, t.id DESC",
			columns:   []string{"title", "description", "priority", "status", "due_date", "user_id", "category_id"},
			immutable: []string{"user_id"},
		}),
		tags: newTagStore(sess),
	}
}

func (s *TaskStore) GetByID(ctx context.Context, id int64) (*models.TaskItem, error) {
	task, err := s.EntityStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withTags(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) GetByIDWithDeleted(ctx context.Context, id int64) (*models.TaskItem, error) {
	task, err := s.EntityStore.GetByIDWithDeleted(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withTags(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) List(ctx context.Context) ([]*models.TaskItem, error) {
	return s.query(ctx, "list", s.visible(""), "")
}

func (s *TaskStore) ListByOwner(ctx context.Context, userID int64, offset, limit int) ([]*models.TaskItem, error) {
	if offset < 0 || limit < 1 {
		return nil, fmt.Errorf("недопустимое окно: offset=%d limit=%d", offset, limit)
	}
	return s.query(ctx, "list_by_owner", s.visible("t.user_id = ?"), "LIMIT ? OFFSET ?", userID, limit, offset)
}

func (s *TaskStore) CountByOwner(ctx context.Context, userID int64) (int, error) {
	return s.count(ctx, "user_id = ?", userID)
}

func (s *TaskStore) GetByStatus(ctx context.Context, userID int64, status models.Status) ([]*models.TaskItem, error) {
	return s.query(ctx, "get_by_status", s.visible("t.user_id = ? AND t.status = ?"), "", userID, status)
}

func (s *TaskStore) GetByCategory(ctx context.Context, userID, categoryID int64) ([]*models.TaskItem, error) {
	return s.query(ctx, "get_by_category", s.visible("t.user_id = ? AND t.category_id = ?"), "", userID, categoryID)
}

func (s *TaskStore) GetByPriority(ctx context.Context, userID int64, priority models.Priority) ([]*models.TaskItem, error) {
	return s.query(ctx, "get_by_priority", s.visible("t.user_id = ? AND t.priority = ?"), "", userID, priority)
}

// GetOverdue: задачи со сроком раньше now, кроме выполненных; ближайший срок первым.
func (s *TaskStore) GetOverdue(ctx context.Context, userID int64, now time.Time) ([]*models.TaskItem, error) {
	items, err := s.selectOrdered(ctx, "get_overdue",
		s.visible("t.user_id = ? AND t.due_date IS NOT NULL AND t.due_date < ? AND t.status <> ?"),
		"t.due_date ASC, t.id ASC", "", userID, now.UTC(), models.StatusDone)
	if err != nil {
		return nil, err
	}
	if err := s.withTags(ctx, items...); err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceTags переписывает связи задачи с тегами целиком.
func (s *TaskStore) ReplaceTags(ctx context.Context, taskID int64, tagIDs []int64) error {
	start := time.Now()
	defer observe("tasks.replace_tags", start)

	q, err := s.sess.writer(ctx)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, q.Rebind("DELETE FROM task_tags WHERE task_id = ?"), taskID); err != nil {
		return fmt.Errorf("очистка тегов задачи: %w", s.sess.db.translate(err))
	}
	insert := q.Rebind("INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING")
	for _, tagID := range tagIDs {
		if _, err := q.ExecContext(ctx, insert, taskID, tagID); err != nil {
			return fmt.Errorf("привязка тега %d: %w", tagID, s.sess.db.translate(err))
		}
	}
	return nil
}

func (s *TaskStore) query(ctx context.Context, op, where, tail string, args ...any) ([]*models.TaskItem, error) {
	items, err := s.selectMany(ctx, op, where, tail, args...)
	if err != nil {
		return nil, err
	}
	if err := s.withTags(ctx, items...); err != nil {
		return nil, err
	}
	return items, nil
}

// withTags подгружает теги и приводит срок к UTC.
func (s *TaskStore) withTags(ctx context.Context, tasks ...*models.TaskItem) error {
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		task.DueDate = utcPtr(task.DueDate)
		ids = append(ids, task.ID)
	}
	byTask, err := s.tags.forTasks(ctx, ids)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		task.Tags = byTask[task.ID]
		if task.Tags == nil {
			task.Tags = []models.Tag{}
		}
	}
	return nil
}
