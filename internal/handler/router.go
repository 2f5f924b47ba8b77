package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/auth"
	"github.com/BuzzLyutic/tareas-api/internal/middleware"
	"github.com/BuzzLyutic/tareas-api/pkg/respond"
)

// NewRouter собирает все маршруты. Все /api/v1/tasks закрыты bearer-аутентификацией
func NewRouter(h *TaskHandler, resolver auth.OwnerResolver, logger *zap.Logger, timeout time.Duration) http.Handler {
	r := chi.NewRouter() // Создаем роутер
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	if timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(resolver, logger))

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/incomplete", h.ListIncomplete)
		r.Delete("/completed", h.DeleteCompleted)
		r.Get("/stats", h.Stats)
		r.Get("/due-date/{date}", h.ListByDueDate)
		r.Get("/priority/{priority}", h.ListByPriority)
		r.Get("/category/{category}", h.ListByCategory)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Put("/complete", h.MarkComplete)
		})
	})

	return r
}
