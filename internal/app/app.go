package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/repository"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/repository/sqlite"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Storage: то, что приложению нужно от выбранной базы.
type Storage interface {
	repository.UnitOfWorkFactory
	handlers.HealthChecker
	Close() error
}

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	storage   Storage
	shutdowns []func() error
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

// Init поднимает логгер, базу, сервисы и маршруты. При ошибке уже созданное закрывается.
func (a *App) Init(ctx context.Context) (err error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.close())
		}
	}()

	a.storage, err = openStorage(ctx, a.config.Database)
	if err != nil {
		return fmt.Errorf("подключение к базе: %w", err)
	}
	a.shutdowns = append(a.shutdowns, a.storage.Close)

	issuer, err := auth.NewTokenIssuer([]byte(a.config.JWT.Secret),
		auth.WithTTL(a.config.JWT.TTL),
		auth.WithIssuer(a.config.JWT.Issuer),
		auth.WithAudience(a.config.JWT.Audience),
	)
	if err != nil {
		return fmt.Errorf("создание издателя токенов: %w", err)
	}
	logger.Info("Издатель токенов готов", zap.Duration("ttl", issuer.TTL()))

	authService := service.NewAuthService(a.storage, auth.NewPasswordHasher(), issuer)
	taskService := service.NewTaskService(a.storage)
	categoryService := service.NewCategoryService(a.storage)

	a.router = newRouter(a.config, routes{
		auth:       handlers.NewAuthHandler(authService),
		tasks:      handlers.NewTaskHandler(taskService),
		categories: handlers.NewCategoryHandler(categoryService),
		health:     handlers.NewHealthHandler(a.storage),
		tokens:     issuer,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "task-manager"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return multierr.Append(group.Wait(), a.close())
}

// close вызывает функции завершения в обратном порядке.
func (a *App) close() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		storage, err := postgres.New(ctx, postgres.Config{
			URL:             cfg.URL,
			MaxConns:        cfg.MaxConnections,
			MinConns:        cfg.MinConnections,
			MaxConnIdleTime: cfg.IdleTimeout,
			ConnectTimeout:  cfg.ConnectTimeout,
			Migrate:         cfg.Migrate,
		})
		if err != nil {
			return nil, err
		}
		return storage, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path, cfg.Migrate)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер базы данных %q", cfg.Driver)
	}
}
