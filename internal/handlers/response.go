package handlers

import (
	"encoding/json"
	"net/http"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/logger"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

// responseWithJSON writes a plain JSON object; used outside the JSON:API surface.
func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any)
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	writeBody(w, "application/json", code, storage)
}

func responseWithDocument(w http.ResponseWriter, code int, doc jsonapi.Document) {
	writeBody(w, jsonapi.MediaType, code, doc)
}

func responseWithErrors(w http.ResponseWriter, code int, errs ...jsonapi.ErrorObject) {
	writeBody(w, jsonapi.MediaType, code, jsonapi.ErrorDocument{Errors: errs})
}

func writeBody(w http.ResponseWriter, contentType string, code int, body any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: failed to encode response", err)
	}
}
