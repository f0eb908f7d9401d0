package service_test

import (
	"context"
	"sync"
	"taskManager/internal/auth"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"taskManager/internal/repository/sqlstore"
	"taskManager/internal/service"
	"taskManager/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// tickingClock каждый вызов сдвигает время на секунду, чтобы порядок создания был однозначным.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type fixture struct {
	db         *sqlstore.DB
	auth       *service.AuthService
	tasks      *service.TaskService
	categories *service.CategoryService
	issuer     *auth.TokenIssuer
}

func newFixture(t *testing.T, now func() time.Time) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	issuer, err := auth.NewTokenIssuer(testSecret)
	require.NoError(t, err)

	return &fixture{
		db:         db,
		auth:       service.NewAuthService(db, auth.NewPasswordHasherWithCost(bcrypt.MinCost), issuer, service.WithClock(now)),
		tasks:      service.NewTaskService(db, service.WithClock(now)),
		categories: service.NewCategoryService(db, service.WithClock(now)),
		issuer:     issuer,
	}
}

func (f *fixture) register(t *testing.T, username string) *service.AuthResult {
	t.Helper()
	result, err := f.auth.Register(context.Background(), service.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password-" + username,
	})
	require.NoError(t, err)
	return result
}

// MockUnitOfWorkFactory - мок фабрики unit of work
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) NewUnitOfWork() repository.UnitOfWork {
	args := m.Called()
	return args.Get(0).(repository.UnitOfWork)
}

// MockUnitOfWork - мок unit of work, хранилища кроме пользователей не нужны
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Users() repository.UserRepository {
	args := m.Called()
	return args.Get(0).(repository.UserRepository)
}

func (m *MockUnitOfWork) Tasks() repository.TaskRepository {
	args := m.Called()
	return args.Get(0).(repository.TaskRepository)
}

func (m *MockUnitOfWork) Categories() repository.CategoryRepository {
	args := m.Called()
	return args.Get(0).(repository.CategoryRepository)
}

func (m *MockUnitOfWork) Tags() repository.TagRepository {
	args := m.Called()
	return args.Get(0).(repository.TagRepository)
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) SaveChanges(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepository - мок хранилища пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDWithDeleted(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

var (
	_ repository.UnitOfWorkFactory = (*MockUnitOfWorkFactory)(nil)
	_ repository.UnitOfWork        = (*MockUnitOfWork)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
)
