package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

// entity: указатель на модель со встроенным models.Model.
type entity[T any] interface {
	*T
	Base() *models.Model
}

type table struct {
	name  string
	alias string
	// selectFrom: SELECT ... FROM ... без WHERE; по умолчанию SELECT * FROM name
	selectFrom string
	orderBy    string
	// доменные колонки без общих полей Model
	columns []string
	// колонки, которые пишутся только при вставке
	immutable []string
}

// EntityStore: общая реализация repository.Store для любой модели.
type EntityStore[T any, PT entity[T]] struct {
	sess *session
	t    table
}

func newEntityStore[T any, PT entity[T]](sess *session, t table) EntityStore[T, PT] {
	if t.selectFrom == "" {
		t.selectFrom = "SELECT * FROM " + t.name
	}
	if t.orderBy == "" {
		t.orderBy = "id"
	}
	return EntityStore[T, PT]{sess: sess, t: t}
}

// notDeleted: фильтр видимости, который добавляется к каждому чтению.
func notDeleted(alias string) string {
	if alias == "" {
		return "NOT is_deleted"
	}
	return "NOT " + alias + ".is_deleted"
}

func (s *EntityStore[T, PT]) col(name string) string {
	if s.t.alias == "" {
		return name
	}
	return s.t.alias + "." + name
}

// visible склеивает условие с фильтром видимости.
func (s *EntityStore[T, PT]) visible(where string) string {
	if where == "" {
		return notDeleted(s.t.alias)
	}
	return where + " AND " + notDeleted(s.t.alias)
}

func (s *EntityStore[T, PT]) GetByID(ctx context.Context, id int64) (*T, error) {
	return s.getOne(ctx, "get_by_id", s.visible(s.col("id")+" = ?"), id)
}

func (s *EntityStore[T, PT]) GetByIDWithDeleted(ctx context.Context, id int64) (*T, error) {
	return s.getOne(ctx, "get_by_id_with_deleted", s.col("id")+" = ?", id)
}

func (s *EntityStore[T, PT]) List(ctx context.Context) ([]*T, error) {
	return s.selectMany(ctx, "list", s.visible(""), "")
}

func (s *EntityStore[T, PT]) Count(ctx context.Context) (int, error) {
	return s.count(ctx, "")
}

func (s *EntityStore[T, PT]) count(ctx context.Context, where string, args ...any) (int, error) {
	start := time.Now()
	defer observe(s.t.name+".count", start)

	cond := notDeleted("")
	if where != "" {
		cond = where + " AND " + cond
	}
	q := s.sess.reader()
	var n int
	query := q.Rebind(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", s.t.name, cond))
	if err := sqlx.GetContext(ctx, q, &n, query, args...); err != nil {
		return 0, fmt.Errorf("подсчёт строк %s: %w", s.t.name, s.sess.db.translate(err))
	}
	return n, nil
}

func (s *EntityStore[T, PT]) getOne(ctx context.Context, op, where string, args ...any) (*T, error) {
	start := time.Now()
	defer observe(s.t.name+"."+op, start)

	q := s.sess.reader()
	item := new(T)
	query := q.Rebind(s.t.selectFrom + " WHERE " + where)
	if err := sqlx.GetContext(ctx, q, item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("чтение %s: %w", s.t.name, s.sess.db.translate(err))
	}
	normalize(PT(item).Base())
	return item, nil
}

// selectMany выполняет выборку; tail дописывается после ORDER BY (LIMIT/OFFSET).
func (s *EntityStore[T, PT]) selectMany(ctx context.Context, op, where, tail string, args ...any) ([]*T, error) {
	return s.selectOrdered(ctx, op, where, s.t.orderBy, tail, args...)
}

func (s *EntityStore[T, PT]) selectOrdered(ctx context.Context, op, where, orderBy, tail string, args ...any) ([]*T, error) {
	start := time.Now()
	defer observe(s.t.name+"."+op, start)

	q := s.sess.reader()
	query := s.t.selectFrom + " WHERE " + where + " ORDER BY " + orderBy
	if tail != "" {
		query += " " + tail
	}
	items := []*T{}
	if err := sqlx.SelectContext(ctx, q, &items, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("выборка %s: %w", s.t.name, s.sess.db.translate(err))
	}
	for _, item := range items {
		normalize(PT(item).Base())
	}
	return items, nil
}

func (s *EntityStore[T, PT]) Create(ctx context.Context, item *T) error {
	start := time.Now()
	defer observe(s.t.name+".create", start)

	base := PT(item).Base()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = s.sess.db.now()
	}
	base.CreatedAt = base.CreatedAt.UTC()
	base.IsDeleted = false
	base.DeletedAt = nil

	q, err := s.sess.writer(ctx)
	if err != nil {
		return err
	}

	columns := append([]string{"created_at", "updated_at", "is_deleted", "deleted_at"}, s.t.columns...)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s) RETURNING id",
		s.t.name, strings.Join(columns, ", "), strings.Join(columns, ", :"))
	bound, args, err := q.BindNamed(query, item)
	if err != nil {
		return fmt.Errorf("подготовка вставки %s: %w", s.t.name, err)
	}
	if err := q.QueryRowxContext(ctx, bound, args...).Scan(&base.ID); err != nil {
		return fmt.Errorf("вставка %s: %w", s.t.name, s.sess.db.translate(err))
	}
	return nil
}

// Update перезаписывает изменяемые колонки живой строки и проставляет UpdatedAt.
func (s *EntityStore[T, PT]) Update(ctx context.Context, item *T) error {
	start := time.Now()
	defer observe(s.t.name+".update", start)

	base := PT(item).Base()
	base.Touch(s.sess.db.now())

	sets := []string{"updated_at = :updated_at"}
	for _, column := range s.t.columns {
		if s.isImmutable(column) {
			continue
		}
		sets = append(sets, column+" = :"+column)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND %s",
		s.t.name, strings.Join(sets, ", "), notDeleted(""))
	return s.exec(ctx, "обновление", query, item)
}

// SoftDelete помечает строку удалённой; физически строка остаётся.
func (s *EntityStore[T, PT]) SoftDelete(ctx context.Context, item *T) error {
	start := time.Now()
	defer observe(s.t.name+".soft_delete", start)

	PT(item).Base().MarkDeleted(s.sess.db.now())
	query := fmt.Sprintf(
		"UPDATE %s SET is_deleted = :is_deleted, deleted_at = :deleted_at, updated_at = :updated_at WHERE id = :id AND %s",
		s.t.name, notDeleted(""))
	return s.exec(ctx, "удаление", query, item)
}

func (s *EntityStore[T, PT]) exec(ctx context.Context, action, query string, item *T) error {
	q, err := s.sess.writer(ctx)
	if err != nil {
		return err
	}
	bound, args, err := q.BindNamed(query, item)
	if err != nil {
		return fmt.Errorf("подготовка запроса %s: %w", s.t.name, err)
	}
	res, err := q.ExecContext(ctx, bound, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, s.t.name, s.sess.db.translate(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, s.t.name, err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *EntityStore[T, PT]) isImmutable(column string) bool {
	for _, c := range s.t.immutable {
		if c == column {
			return true
		}
	}
	return false
}

// normalize приводит время к UTC: SQLite возвращает его с фиксированной зоной +00:00.
func normalize(m *models.Model) {
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = utcPtr(m.UpdatedAt)
	m.DeletedAt = utcPtr(m.DeletedAt)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
