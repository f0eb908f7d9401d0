package app

import (
	"net/http"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type routes struct {
	auth       *handlers.AuthHandler
	tasks      *handlers.TaskHandler
	categories *handlers.CategoryHandler
	health     *handlers.HealthHandler
	tokens     middleware.TokenParser
}

func newRouter(cfg *config.Config, h routes) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.HTTP.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.HTTP.RateLimit))
	}

	r.Get("/health", h.health.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.auth.Register) // POST /api/auth/register
			r.Post("/login", h.auth.Login)       // POST /api/auth/login
			r.With(middleware.Authenticate(h.tokens)).Get("/me", h.auth.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.tokens))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.tasks.List)    // GET /api/tasks?page=1&page_size=10
				r.Post("/", h.tasks.Create) // POST /api/tasks

				r.Get("/overdue", h.tasks.GetOverdue)
				r.Get("/status/{status}", h.tasks.GetByStatus)
				r.Get("/priority/{priority}", h.tasks.GetByPriority)
				r.Get("/category/{categoryID}", h.tasks.GetByCategory)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.tasks.GetByID)
					r.Put("/", h.tasks.Update)
					r.Delete("/", h.tasks.Delete)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.categories.GetAll)
				r.Post("/", h.categories.Create)
				r.Get("/search", h.categories.Search) // GET /api/categories/search?name=

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.categories.GetByID)
					r.Put("/", h.categories.Update)
					r.Delete("/", h.categories.Delete)
				})
			})
		})
	})

	return r
}
