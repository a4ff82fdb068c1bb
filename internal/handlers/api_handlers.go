// internal/handlers/api_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
	"github.com/flasktaskr/flasktaskr/internal/service"
)

// APITaskCollection serves the read-only listing: a fixed page of ten tasks
// starting at offset zero, wrapped in an "items" object.
func (h *Handler) APITaskCollection(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.PageTasks(r.Context())
	if err != nil {
		logger.Error("API list tasks failed", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		items[i] = taskRepresentation(t)
	}

	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) APITaskResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Element does not exist")
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Element does not exist")
			return
		}
		logger.Error("API get task failed", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, taskRepresentation(task))
}

// taskRepresentation writes the wire field names, spaces and all; clients
// depend on them verbatim.
func taskRepresentation(t *models.Task) map[string]any {
	return map[string]any{
		"task_id":     t.TaskID,
		"task name":   t.Name,
		"due date":    t.DueDate.Format("2006-01-02"),
		"priority":    t.Priority,
		"posted date": t.PostedDate.Format("2006-01-02 15:04:05"),
		"status":      int(t.Status),
		"user id":     t.UserID,
	}
}
