package handlers

import (
	"net/http"
	"strconv"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

// handleError writes err in the error envelope. Errors that are not business errors
// become a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	if handleBusinessError(w, r, err) {
		return
	}

	logger.Error("HTTP: Service error", err,
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))

	responseWithErrors(w, http.StatusInternalServerError, jsonapi.ErrorObject{
		Code:  strconv.Itoa(http.StatusInternalServerError),
		Title: "Internal server error",
	})
}

func handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	fields := []zap.Field{
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
		zap.String("path", r.URL.Path),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: Business error", businessErr, fields...)
	} else {
		logger.Warn("HTTP: Business error", fields...)
	}

	if statusCode == http.StatusUnauthorized {
		w.WriteHeader(statusCode)
		return true
	}

	responseWithErrors(w, statusCode, errorObjects(statusCode, businessErr)...)
	return true
}

func errorObjects(statusCode int, businessErr *service.BusinessError) []jsonapi.ErrorObject {
	code := strconv.Itoa(statusCode)

	if len(businessErr.Fields) > 0 {
		objects := make([]jsonapi.ErrorObject, 0, len(businessErr.Fields))
		for _, f := range businessErr.Fields {
			objects = append(objects, jsonapi.ErrorObject{Code: code, Title: f.Message, Detail: f.Message})
		}
		return objects
	}

	return []jsonapi.ErrorObject{{
		Code:   code,
		Title:  businessErr.Message,
		Detail: errorDetail(businessErr),
	}}
}

func errorDetail(businessErr *service.BusinessError) string {
	switch businessErr.Code {
	case service.CodeNotFound:
		if id, ok := businessErr.Details["id"].(string); ok {
			return "The record identified by " + id + " could not be found."
		}
	case service.CodeTypeMismatch, service.CodeIDMismatch:
		if expected, ok := businessErr.Details["expected"].(string); ok {
			return "Expected " + expected
		}
	}
	return ""
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeInvalidJSON, service.CodeMissingData, service.CodeTypeMismatch, service.CodeIDMismatch:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case service.CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case service.CodeConstraintViolation:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
