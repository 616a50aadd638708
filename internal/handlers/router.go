package handlers

import (
	"net/http"

	"todoTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	AllowedOrigins    []string
	RequestsPerMinute int
}

type Handlers struct {
	Todos      TodoHandler
	Categories CategoryHandler
	Users      UserHandler
	Health     HealthHandler
}

// NewRouter mounts the public and authenticated routes and wraps them for tracing.
func NewRouter(h Handlers, validator middleware.TokenValidator, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(cfg.RequestsPerMinute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.HealthCheck) // GET /health

	r.Post("/users", h.Users.SignUp)           // POST /users
	r.Post("/oauth/token", h.Users.IssueToken) // POST /oauth/token

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(validator))

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", h.Todos.ListTodos)   // GET /todos
			r.Post("/", h.Todos.CreateTodo) // POST /todos

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Todos.GetTodo)           // GET /todos/{id}
				r.Patch("/", h.Todos.UpdateTodo)      // PATCH /todos/{id}
				r.Delete("/", h.Todos.DeleteTodo)     // DELETE /todos/{id}
				r.Delete("/purge", h.Todos.PurgeTodo) // DELETE /todos/{id}/purge
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Categories.ListCategories)  // GET /categories
			r.Post("/", h.Categories.CreateCategory) // POST /categories

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Categories.GetCategory)       // GET /categories/{id}
				r.Patch("/", h.Categories.UpdateCategory)  // PATCH /categories/{id}
				r.Delete("/", h.Categories.DeleteCategory) // DELETE /categories/{id}
			})
		})
	})

	return otelhttp.NewHandler(r, serviceName)
}
