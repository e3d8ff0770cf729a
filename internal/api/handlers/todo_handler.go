package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/auth"
	"github.com/avelks/todo-api-be/internal/services"
)

// TodoHandler handles HTTP requests for todo records. Every operation is
// scoped to the identity the middleware verified.
type TodoHandler struct {
	service  services.TodoServiceProvider
	eventSvc services.EventServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider, eventSvc services.EventServiceProvider) *TodoHandler {
	return &TodoHandler{service: service, eventSvc: eventSvc}
}

// List handles the request to get one page of the user's todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	todos, err := h.service.ListTodos(r.Context(), userID, page, limit)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list todos")
		writeError(w, http.StatusInternalServerError, "failed to list todos: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"count":  len(todos),
		"todos":  todos,
	})
}

// Create handles the request to create a new todo.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}

	var input services.CreateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Title == "" {
		writeFail(w, http.StatusBadRequest, "title is required")
		return
	}

	todo, err := h.service.CreateTodo(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateID) {
			writeFail(w, http.StatusConflict, "todo already exists")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create todo")
		writeError(w, http.StatusInternalServerError, "failed to create todo: "+err.Error())
		return
	}

	h.recordEvent(r, userID, "todo.create", fmt.Sprintf("Created todo %q", todo.Title))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"todo": todo},
	})
}

// Get handles the request to get a single todo by its ID.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}
	id := chi.URLParam(r, "id")

	todo, err := h.service.GetTodo(r.Context(), userID, id)
	if err != nil {
		h.respondTodoError(w, err, id, userID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"todo": todo},
	})
}

// Update handles a partial update; omitted fields keep their values.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}
	id := chi.URLParam(r, "id")

	var input services.UpdateTodoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.service.UpdateTodo(r.Context(), userID, id, input)
	if err != nil {
		h.respondTodoError(w, err, id, userID)
		return
	}

	h.recordEvent(r, userID, "todo.update", fmt.Sprintf("Updated todo %q", todo.Title))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"todo": todo},
	})
}

// Delete handles the request to delete a todo.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "missing auth token")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteTodo(r.Context(), userID, id); err != nil {
		h.respondTodoError(w, err, id, userID)
		return
	}

	h.recordEvent(r, userID, "todo.delete", fmt.Sprintf("Deleted todo %s", id))

	w.WriteHeader(http.StatusOK)
}

// respondTodoError maps a repository error to the HTTP response. A todo that
// exists but belongs to another user is indistinguishable from a missing one.
func (h *TodoHandler) respondTodoError(w http.ResponseWriter, err error, id, userID string) {
	if errors.Is(err, services.ErrNotFound) {
		writeFail(w, http.StatusNotFound, fmt.Sprintf("todo with id %s not found", id))
		return
	}
	log.Error().Err(err).Str("todo_id", id).Str("user_id", userID).Msg("Todo operation failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *TodoHandler) recordEvent(r *http.Request, userID, eventType, message string) {
	if err := h.eventSvc.RecordEvent(r.Context(), userID, eventType, "info", message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("type", eventType).Msg("Failed to record event")
	}
}
