package jsonapi

import (
	"bytes"
	"encoding/json"
	"time"

	"todoTracker/internal/service"

	"github.com/google/uuid"
)

// DecodeWrite validates the envelope of a write body. expectedID is empty for creates;
// for updates data.id must equal it.
func DecodeWrite(body []byte, expectedType, expectedID string) (*WriteRequest, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		if json.Valid(body) {
			return nil, service.NewBusinessError(service.CodeMissingData, "Missing data key")
		}
		return nil, service.NewBusinessError(service.CodeInvalidJSON, "Invalid JSON")
	}

	rawData, ok := envelope["data"]
	if !ok {
		return nil, service.NewBusinessError(service.CodeMissingData, "Missing data key")
	}

	var data struct {
		Type          *string                    `json:"type"`
		ID            json.RawMessage            `json:"id"`
		Attributes    json.RawMessage            `json:"attributes"`
		Relationships map[string]json.RawMessage `json:"relationships"`
	}
	if err := json.Unmarshal(rawData, &data); err != nil || data.Type == nil || *data.Type != expectedType {
		return nil, service.NewBusinessError(service.CodeTypeMismatch, "Invalid or missing type",
			service.ToDetail("expected", expectedType))
	}

	req := &WriteRequest{
		Attributes:    data.Attributes,
		Relationships: data.Relationships,
	}
	if len(req.Attributes) == 0 || isNull(req.Attributes) {
		req.Attributes = json.RawMessage("{}")
	}

	var id string
	if len(data.ID) > 0 && json.Unmarshal(data.ID, &id) != nil {
		id = ""
	}
	req.ID = id

	if expectedID != "" && !sameID(id, expectedID) {
		return nil, service.NewBusinessError(service.CodeIDMismatch, "ID mismatch",
			service.ToDetail("expected", expectedID))
	}

	return req, nil
}

// sameID compares ids as UUIDs when both parse, so letter case does not matter.
func sameID(got, want string) bool {
	if got == want {
		return true
	}
	g, errG := uuid.Parse(got)
	w, errW := uuid.Parse(want)
	return errG == nil && errW == nil && g == w
}

type todoAttributes struct {
	Name          service.Optional[string] `json:"name"`
	Notes         service.Optional[string] `json:"notes"`
	CompletedAt   service.Optional[string] `json:"completed-at"`
	DeletedAt     service.Optional[string] `json:"deleted-at"`
	DeferredUntil service.Optional[string] `json:"deferred-until"`
}

type categoryAttributes struct {
	Name      service.Optional[string] `json:"name"`
	SortOrder service.Optional[int]    `json:"sort-order"`
}

type userAttributes struct {
	Email    service.Optional[string] `json:"email"`
	Password service.Optional[string] `json:"password"`
}

func DecodeTodoInput(req *WriteRequest) (service.TodoInput, error) {
	var in service.TodoInput

	if err := validateAttributes(todoSchema, req.Attributes); err != nil {
		return in, err
	}
	var attrs todoAttributes
	if err := json.Unmarshal(req.Attributes, &attrs); err != nil {
		return in, service.NewValidationError(service.Invalid("attributes", "Attributes must be an object"))
	}

	var fields []service.FieldError
	in.Name = attrs.Name
	in.Notes = attrs.Notes
	in.CompletedAt = parseTime("completed-at", attrs.CompletedAt, &fields)
	in.DeletedAt = parseTime("deleted-at", attrs.DeletedAt, &fields)
	in.DeferredUntil = parseTime("deferred-until", attrs.DeferredUntil, &fields)
	in.Category = categoryRelationship(req.Relationships, &fields)

	if len(fields) > 0 {
		return in, service.NewValidationError(fields...)
	}
	return in, nil
}

func DecodeCategoryInput(req *WriteRequest) (service.CategoryInput, error) {
	var in service.CategoryInput

	if err := validateAttributes(categorySchema, req.Attributes); err != nil {
		return in, err
	}
	var attrs categoryAttributes
	if err := json.Unmarshal(req.Attributes, &attrs); err != nil {
		return in, service.NewValidationError(service.Invalid("attributes", "Attributes must be an object"))
	}

	in.Name = attrs.Name
	in.SortOrder = attrs.SortOrder
	return in, nil
}

func DecodeUserInput(req *WriteRequest) (service.UserInput, error) {
	var in service.UserInput

	if err := validateAttributes(userSchema, req.Attributes); err != nil {
		return in, err
	}
	var attrs userAttributes
	if err := json.Unmarshal(req.Attributes, &attrs); err != nil {
		return in, service.NewValidationError(service.Invalid("attributes", "Attributes must be an object"))
	}

	in.Email = attrs.Email
	in.Password = attrs.Password
	return in, nil
}

// categoryRelationship reads relationships.category.data. A missing data member clears the
// category just like an explicit null.
func categoryRelationship(rels map[string]json.RawMessage, fields *[]service.FieldError) service.Optional[uuid.UUID] {
	raw, ok := rels["category"]
	if !ok || isNull(raw) {
		return service.Optional[uuid.UUID]{}
	}

	var rel struct {
		Data *struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &rel); err != nil {
		*fields = append(*fields, service.Invalid("category", "Category is invalid"))
		return service.Optional[uuid.UUID]{}
	}
	if rel.Data == nil {
		return service.Null[uuid.UUID]()
	}

	id, err := uuid.Parse(rel.Data.ID)
	if err != nil {
		*fields = append(*fields, service.Invalid("category", "Category must exist"))
		return service.Optional[uuid.UUID]{}
	}
	return service.Some(id)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime accepts RFC 3339 and date-only values; zone-less values are taken as UTC.
func parseTime(field string, v service.Optional[string], fields *[]service.FieldError) service.Optional[time.Time] {
	if !v.Set {
		return service.Optional[time.Time]{}
	}
	if v.Null || v.Value == "" {
		return service.Null[time.Time]()
	}

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v.Value); err == nil {
			return service.Some(t.UTC())
		}
	}

	*fields = append(*fields, service.Invalid(field, humanize(field)+" is not a valid time"))
	return service.Optional[time.Time]{}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
