// internal/handlers/handlers.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flasktaskr/flasktaskr/internal/middleware"
	"github.com/flasktaskr/flasktaskr/internal/service"
	"github.com/flasktaskr/flasktaskr/internal/session"
)

type Handler struct {
	auth     *service.AuthService
	tasks    *service.TaskService
	sessions *session.Manager
}

func New(auth *service.AuthService, tasks *service.TaskService, sessions *session.Manager) *Handler {
	return &Handler{
		auth:     auth,
		tasks:    tasks,
		sessions: sessions,
	}
}

// Routes wires every route of the application, page and API alike. Trailing
// slashes are part of the paths.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover(h.ServerErrorPage))

	r.Get("/", h.LoginPage)
	r.Post("/", h.Login)
	r.Get("/register/", h.RegisterPage)
	r.Post("/register/", h.Register)
	r.Get("/logout/", h.Logout)

	r.Get("/tasks/", h.Tasks)
	r.Post("/add/", h.AddTask)
	r.Get("/complete/{task_id}/", h.CompleteTask)
	r.Get("/delete/{task_id}/", h.DeleteTask)

	r.Get("/api/v1/tasks/", h.APITaskCollection)
	r.Get("/api/v1/tasks/{id}", h.APITaskResource)

	r.NotFound(h.NotFoundPage)

	return r
}

// requireLogin is the explicit guard called at the top of every protected
// handler. Anonymous visitors are flashed a prompt and sent to the login
// page; the second return value tells the caller to stop.
func (h *Handler) requireLogin(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := h.sessions.Resolve(w, r)
	if !sess.Identity().Authenticated {
		sess.Flash("You need to login first")
		http.Redirect(w, r, "/", http.StatusFound)
		return nil, false
	}
	return sess, true
}
