package handlers

import (
	"net/http"
	"time"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	CategoryService CategoryService
}

func NewCategoryHandler(categoryService CategoryService) CategoryHandler {
	return CategoryHandler{CategoryService: categoryService}
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	categories, err := h.CategoryService.ListCategories(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Categories listed",
		zap.Int("count", len(categories)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, jsonapi.Document{Data: jsonapi.Categories(categories)})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeCategories)
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := h.CategoryService.GetCategory(r.Context(), userID, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Category found",
		zap.String("category_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, jsonapi.Document{Data: jsonapi.Category(c)})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	in, err := decodeCategory(w, r, "")
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := h.CategoryService.CreateCategory(r.Context(), userID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Category created",
		zap.String("category_id", c.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	w.Header().Set("Location", "/categories/"+c.ID.String())
	responseWithDocument(w, http.StatusCreated, jsonapi.Document{Data: jsonapi.Category(c)})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeCategories)
	if err != nil {
		handleError(w, r, err)
		return
	}

	in, err := decodeCategory(w, r, id.String())
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := h.CategoryService.UpdateCategory(r.Context(), userID, id, in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Category updated",
		zap.String("category_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithDocument(w, http.StatusOK, jsonapi.Document{Data: jsonapi.Category(c)})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, jsonapi.TypeCategories)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := h.CategoryService.DeleteCategory(r.Context(), userID, id); err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Category deleted",
		zap.String("category_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func decodeCategory(w http.ResponseWriter, r *http.Request, expectedID string) (service.CategoryInput, error) {
	body, err := readWriteBody(w, r)
	if err != nil {
		return service.CategoryInput{}, err
	}
	req, err := jsonapi.DecodeWrite(body, jsonapi.TypeCategories, expectedID)
	if err != nil {
		return service.CategoryInput{}, err
	}
	return jsonapi.DecodeCategoryInput(req)
}
