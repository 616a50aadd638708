package handlers

import (
	"context"
	"net/http"
	"time"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/logger"
	"todoTracker/internal/middleware"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TodoHandler struct {
	TodoService TodoService
}

func NewTodoHandler(todoService TodoService) TodoHandler {
	return TodoHandler{TodoService: todoService}
}

func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	params := listParams(r)
	result, err := h.TodoService.ListTodos(r.Context(), userID, params)
	if err != nil {
		handleError(w, r, err)
		return
	}

	doc := jsonapi.Document{Data: jsonapi.Todos(result.Todos)}
	if len(result.Included) > 0 {
		doc.Included = jsonapi.Categories(result.Included)
	}
	if result.PageCount != nil {
		doc.Meta = map[string]any{"page-count": *result.PageCount}
	}

	logger.Info("HTTP_OUT: Todos listed",
		zap.Int("count", len(result.Todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, doc)
}

func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeTodos)
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TodoService.GetTodo(r.Context(), userID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	doc := jsonapi.Document{Data: jsonapi.Todo(t)}
	if includesCategory(r) {
		included, err := h.TodoService.IncludeCategories(r.Context(), userID, []*todo.Todo{t})
		if err != nil {
			handleError(w, r, err)
			return
		}
		if len(included) > 0 {
			doc.Included = jsonapi.Categories(included)
		}
	}

	logger.Info("HTTP_OUT: Todo found",
		zap.String("todo_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, doc)
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	in, err := decodeTodo(w, r, "")
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TodoService.CreateTodo(r.Context(), userID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Todo created",
		zap.String("todo_id", t.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	w.Header().Set("Location", "/todos/"+t.ID.String())
	responseWithDocument(w, http.StatusCreated, jsonapi.Document{Data: jsonapi.Todo(t)})
}

func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeTodos)
	if err != nil {
		handleError(w, r, err)
		return
	}

	in, err := decodeTodo(w, r, id.String())
	if err != nil {
		handleError(w, r, err)
		return
	}

	t, err := h.TodoService.UpdateTodo(r.Context(), userID, id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Todo updated",
		zap.String("todo_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, jsonapi.Document{Data: jsonapi.Todo(t)})
}

// DeleteTodo soft-deletes; PurgeTodo removes the row.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "HTTP_OUT: Todo deleted", h.TodoService.DeleteTodo)
}

func (h *TodoHandler) PurgeTodo(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "HTTP_OUT: Todo purged", h.TodoService.PurgeTodo)
}

func (h *TodoHandler) remove(w http.ResponseWriter, r *http.Request, msg string,
	op func(ctx context.Context, userID, id uuid.UUID) error) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeTodos)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := op(r.Context(), userID, id); err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info(msg,
		zap.String("todo_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func decodeTodo(w http.ResponseWriter, r *http.Request, expectedID string) (service.TodoInput, error) {
	body, err := readWriteBody(w, r)
	if err != nil {
		return service.TodoInput{}, err
	}
	req, err := jsonapi.DecodeWrite(body, jsonapi.TypeTodos, expectedID)
	if err != nil {
		return service.TodoInput{}, err
	}
	return jsonapi.DecodeTodoInput(req)
}

// currentUser returns the id stored by the Authenticate middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		logger.Warn("HTTP: no authenticated user in context", zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
