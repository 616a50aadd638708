package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/query"
	"todoTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, targets ...string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, target := range targets {
		if mediaType == target {
			return true
		}
	}
	return false
}

// readWriteBody checks the content type and reads at most maxBodyBytes of the body.
func readWriteBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if !checkContentType(r, jsonapi.MediaType, "application/json") {
		return nil, service.NewBusinessError(service.CodeUnsupportedMediaType, "Unsupported media type",
			service.ToDetail("content_type", r.Header.Get("Content-Type")))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, service.NewBusinessError(service.CodeInvalidJSON, "Request body too large")
		}
		return nil, service.NewBusinessError(service.CodeInvalidJSON, "Invalid JSON")
	}
	return body, nil
}

// pathID parses the {id} URL parameter. A malformed id is reported as a missing record.
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, service.NewNotFound(resource, raw)
	}
	return id, nil
}

// listParams reads filter[status], filter[search], sort, include and page[number].
func listParams(r *http.Request) service.ListParams {
	values := r.URL.Query()

	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page[number]")))
	if err != nil {
		page = 1
	}

	return service.ListParams{
		Params: query.Params{
			Statuses: query.SplitList(values.Get("filter[status]")),
			Search:   values.Get("filter[search]"),
			Sort:     values.Get("sort"),
			Page:     page,
		},
		IncludeCategory: includesCategory(r),
	}
}

func includesCategory(r *http.Request) bool {
	for _, name := range query.SplitList(r.URL.Query().Get("include")) {
		if name == "category" {
			return true
		}
	}
	return false
}
