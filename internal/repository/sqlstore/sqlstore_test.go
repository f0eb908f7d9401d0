package sqlstore_test

import (
	"context"
	"fmt"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"taskManager/internal/repository/sqlstore"
	"taskManager/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(owner *models.User, title string, createdAt time.Time) *models.TaskItem {
	return &models.TaskItem{
		Model:    models.Model{CreatedAt: createdAt},
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
		UserID:   owner.ID,
	}
}

// TestUnitOfWork_ImplicitTransaction тестирует запись без Begin
func TestUnitOfWork_ImplicitTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	t.Run("success - SaveChanges commits", func(t *testing.T) {
		user := testutil.SeedUser(t, db, "alice")

		uow := db.NewUnitOfWork()
		defer uow.Close()
		got, err := uow.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("success - Close discards unsaved writes", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		user := &models.User{Username: "ghost", Email: "ghost@example.com", PasswordHash: "hash", Role: models.RoleUser}
		require.NoError(t, uow.Users().Create(ctx, user))
		require.NotZero(t, user.ID)
		require.NoError(t, uow.Close())

		check := db.NewUnitOfWork()
		defer check.Close()
		exists, err := check.Users().UsernameExists(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

// TestUnitOfWork_ExplicitTransaction тестирует Begin/Commit/Rollback
func TestUnitOfWork_ExplicitTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	t.Run("success - SaveChanges inside Begin does not commit", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Categories().Create(ctx, &models.Category{Name: "Work", Color: models.DefaultCategoryColor}))
		require.NoError(t, uow.SaveChanges(ctx))
		require.NoError(t, uow.Rollback())
		require.NoError(t, uow.Close())

		check := db.NewUnitOfWork()
		defer check.Close()
		n, err := check.Categories().Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("success - Commit makes writes visible", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Categories().Create(ctx, &models.Category{Name: "Home", Color: models.DefaultCategoryColor}))
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Close())

		check := db.NewUnitOfWork()
		defer check.Close()
		n, err := check.Categories().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("error - Begin twice", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		defer uow.Close()
		require.NoError(t, uow.Begin(ctx))
		assert.ErrorIs(t, uow.Begin(ctx), repository.ErrTransactionActive)
	})

	t.Run("error - Commit without transaction", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		defer uow.Close()
		assert.ErrorIs(t, uow.Commit(), repository.ErrNoTransaction)
		assert.NoError(t, uow.Rollback())
	})
}

// TestUserStore_Uniqueness тестирует уникальность среди активных пользователей
func TestUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, db, "alice")

	t.Run("error - duplicate username", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		defer uow.Close()
		err := uow.Users().Create(ctx, &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "hash", Role: models.RoleUser})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("success - name of deleted user can be reused", func(t *testing.T) {
		uow := db.NewUnitOfWork()
		require.NoError(t, uow.Users().SoftDelete(ctx, alice))
		require.NoError(t, uow.SaveChanges(ctx))
		require.NoError(t, uow.Close())

		again := testutil.SeedUser(t, db, "alice")
		assert.NotEqual(t, alice.ID, again.ID)

		check := db.NewUnitOfWork()
		defer check.Close()
		found, err := check.Users().GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, again.ID, found.ID)

		byEmail, err := check.Users().GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, again.ID, byEmail.ID)

		_, err = check.Users().GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

// TestEntityStore_SoftDelete тестирует скрытие удалённых строк
func TestEntityStore_SoftDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	db := testutil.NewTestDB(t, sqlstore.WithClock(func() time.Time { return now }))
	work := testutil.SeedCategory(t, db, "Work")
	testutil.SeedCategory(t, db, "Home")

	uow := db.NewUnitOfWork()
	defer uow.Close()

	require.NoError(t, uow.Categories().SoftDelete(ctx, work))
	require.NoError(t, uow.SaveChanges(ctx))

	_, err := uow.Categories().GetByID(ctx, work.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	all, err := uow.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Home", all[0].Name)

	n, err := uow.Categories().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	deleted, err := uow.Categories().GetByIDWithDeleted(ctx, work.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)
	assert.True(t, now.Equal(*deleted.DeletedAt))

	t.Run("error - update of deleted row", func(t *testing.T) {
		deleted.Name = "Renamed"
		assert.ErrorIs(t, uow.Categories().Update(ctx, deleted), repository.ErrNotFound)
	})

	t.Run("error - second delete", func(t *testing.T) {
		assert.ErrorIs(t, uow.Categories().SoftDelete(ctx, work), repository.ErrNotFound)
	})
}

func TestCategoryStore_SearchByName(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	testutil.SeedCategory(t, db, "Work")
	testutil.SeedCategory(t, db, "Homework")
	testutil.SeedCategory(t, db, "100%_done")

	uow := db.NewUnitOfWork()
	defer uow.Close()

	found, err := uow.Categories().SearchByName(ctx, "WORK")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Homework", found[0].Name)
	assert.Equal(t, "Work", found[1].Name)

	literal, err := uow.Categories().SearchByName(ctx, "%_")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100%_done", literal[0].Name)
}

// TestTagStore_GetOrCreate тестирует повторное использование тегов
func TestTagStore_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	uow := db.NewUnitOfWork()
	defer uow.Close()

	first, err := uow.Tags().GetOrCreate(ctx, "urgent")
	require.NoError(t, err)
	second, err := uow.Tags().GetOrCreate(ctx, "urgent")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	upper, err := uow.Tags().GetOrCreate(ctx, "Urgent")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, upper.ID, "имена тегов чувствительны к регистру")

	t.Run("success - deleted tag is revived", func(t *testing.T) {
		require.NoError(t, uow.Tags().SoftDelete(ctx, upper))
		_, err := uow.Tags().GetByName(ctx, "Urgent")
		require.ErrorIs(t, err, repository.ErrNotFound)

		revived, err := uow.Tags().GetOrCreate(ctx, "Urgent")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, revived.ID)
		assert.False(t, revived.IsDeleted)

		found, err := uow.Tags().GetByName(ctx, "Urgent")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, found.ID)
	})

	require.NoError(t, uow.SaveChanges(ctx))
	n, err := uow.Tags().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestTaskStore_ListByOwner тестирует порядок и окно выборки
func TestTaskStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	uow := db.NewUnitOfWork()
	defer uow.Close()
	for i := 1; i <= 5; i++ {
		require.NoError(t, uow.Tasks().Create(ctx, newTask(alice, fmt.Sprintf("t%d", i), base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, uow.Tasks().Create(ctx, newTask(bob, "foreign", base)))
	require.NoError(t, uow.SaveChanges(ctx))

	page, err := uow.Tasks().ListByOwner(ctx, alice.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "t3", page[0].Title)
	assert.Equal(t, "t2", page[1].Title)

	total, err := uow.Tasks().CountByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	beyond, err := uow.Tasks().ListByOwner(ctx, alice.ID, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	_, err = uow.Tasks().ListByOwner(ctx, alice.ID, -2, 2)
	assert.Error(t, err, "отрицательное смещение не превращается в первую страницу")
}

// TestTaskStore_TagsAndCategory тестирует подгрузку тегов и имени категории
func TestTaskStore_TagsAndCategory(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, db, "alice")
	work := testutil.SeedCategory(t, db, "Work")

	uow := db.NewUnitOfWork()
	defer uow.Close()

	task := newTask(alice, "report", time.Time{})
	task.CategoryID = &work.ID
	require.NoError(t, uow.Tasks().Create(ctx, task))

	urgent, err := uow.Tags().GetOrCreate(ctx, "urgent")
	require.NoError(t, err)
	later, err := uow.Tags().GetOrCreate(ctx, "later")
	require.NoError(t, err)
	require.NoError(t, uow.Tasks().ReplaceTags(ctx, task.ID, []int64{urgent.ID, later.ID}))
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := uow.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"urgent", "later"}, got.TagNames())
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "Work", *got.CategoryName)

	t.Run("success - tags replaced not appended", func(t *testing.T) {
		require.NoError(t, uow.Tasks().ReplaceTags(ctx, task.ID, []int64{later.ID}))
		tags, err := uow.Tags().GetByTaskID(ctx, task.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "later", tags[0].Name)
	})

	t.Run("success - deleted category hides name but keeps id", func(t *testing.T) {
		require.NoError(t, uow.Categories().SoftDelete(ctx, work))
		got, err := uow.Tasks().GetByID(ctx, task.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, work.ID, *got.CategoryID)
		assert.Nil(t, got.CategoryName)
	})
}

func TestTaskStore_GetOverdue(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, db, "alice")
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	uow := db.NewUnitOfWork()
	defer uow.Close()

	due := func(title string, at time.Time, status models.Status) {
		task := newTask(alice, title, time.Time{})
		task.DueDate = &at
		task.Status = status
		require.NoError(t, uow.Tasks().Create(ctx, task))
	}
	due("late", now.Add(-time.Hour), models.StatusTodo)
	due("very-late", now.Add(-48*time.Hour), models.StatusInProgress)
	due("late-but-done", now.Add(-2*time.Hour), models.StatusDone)
	due("future", now.Add(time.Hour), models.StatusTodo)
	require.NoError(t, uow.Tasks().Create(ctx, newTask(alice, "no-date", time.Time{})))

	overdue, err := uow.Tasks().GetOverdue(ctx, alice.ID, now)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, "very-late", overdue[0].Title)
	assert.Equal(t, "late", overdue[1].Title)
	assert.True(t, overdue[0].IsOverdue(now))
}

func TestTaskStore_UpdateKeepsOwner(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")

	uow := db.NewUnitOfWork()
	defer uow.Close()

	task := newTask(alice, "mine", time.Time{})
	require.NoError(t, uow.Tasks().Create(ctx, task))

	task.Title = "still mine"
	task.UserID = bob.ID
	require.NoError(t, uow.Tasks().Update(ctx, task))
	require.NotNil(t, task.UpdatedAt)

	got, err := uow.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "still mine", got.Title)
	assert.Equal(t, alice.ID, got.UserID)
}

func TestTaskStore_InvalidReference(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)

	uow := db.NewUnitOfWork()
	defer uow.Close()

	err := uow.Tasks().Create(ctx, &models.TaskItem{Title: "orphan", Priority: models.PriorityLow, Status: models.StatusTodo, UserID: 999})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}
