// internal/handlers/task_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/service"
	"github.com/flasktaskr/flasktaskr/internal/session"
)

func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	h.renderTasks(w, r, sess, http.StatusOK, "", formData{})
}

func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderTasks(w, r, sess, http.StatusBadRequest, "This field is required.", formData{})
		return
	}

	name := r.PostFormValue("name")
	dueDate := r.PostFormValue("due_date")

	task, err := h.tasks.AddTask(r.Context(), sess.Identity(),
		name, dueDate, r.PostFormValue("priority"))
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			// Re-render the tasks page with the form error inline.
			h.renderTasks(w, r, sess, http.StatusOK, vErr.Reason, formData{Name: name, DueDate: dueDate})
			return
		}
		logger.Error("Add task failed", err)
		h.writeServerError(w)
		return
	}

	sess.Flash(fmt.Sprintf("%s was successfully posted. Thanks.", task.Name))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id, ok := h.taskIDParam(w, r, "task_id")
	if !ok {
		return
	}

	task, err := h.tasks.CompleteTask(r.Context(), sess.Identity(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.NotFoundPage(w, r)
		case errors.Is(err, service.ErrForbidden):
			sess.Flash("You can only update tasks that belong to you.")
			http.Redirect(w, r, "/tasks/", http.StatusFound)
		default:
			logger.Error("Complete task failed", err)
			h.writeServerError(w)
		}
		return
	}

	sess.Flash(fmt.Sprintf("%s was completed. Nice", task.Name))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireLogin(w, r)
	if !ok {
		return
	}

	id, ok := h.taskIDParam(w, r, "task_id")
	if !ok {
		return
	}

	task, err := h.tasks.DeleteTask(r.Context(), sess.Identity(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			h.NotFoundPage(w, r)
		case errors.Is(err, service.ErrForbidden):
			sess.Flash("You can only delete tasks that belong to you.")
			http.Redirect(w, r, "/tasks/", http.StatusFound)
		default:
			logger.Error("Delete task failed", err)
			h.writeServerError(w)
		}
		return
	}

	sess.Flash(fmt.Sprintf("%s was deleted. Nice", task.Name))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (h *Handler) renderTasks(w http.ResponseWriter, r *http.Request, sess *session.Session, status int, formError string, form formData) {
	open, err := h.tasks.OpenTasks(r.Context())
	if err != nil {
		logger.Error("List open tasks failed", err)
		h.writeServerError(w)
		return
	}

	closed, err := h.tasks.ClosedTasks(r.Context())
	if err != nil {
		logger.Error("List closed tasks failed", err)
		h.writeServerError(w)
		return
	}

	identity := sess.Identity()
	h.render(w, status, "tasks.html", &pageData{
		Title:       "Tasks",
		Flashes:     sess.PopFlashes(),
		Error:       formError,
		User:        identity,
		OpenTasks:   viewsFor(identity, open),
		ClosedTasks: viewsFor(identity, closed),
		Form:        form,
	})
}

func (h *Handler) taskIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		h.NotFoundPage(w, r)
		return 0, false
	}
	return id, true
}

func viewsFor(identity models.Identity, tasks []*models.Task) []taskView {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = taskView{Task: t, CanModify: service.MayModify(identity, t)}
	}
	return views
}
