package jsonapi

import "encoding/json"

const MediaType = "application/vnd.api+json"

const (
	TypeTodos      = "todos"
	TypeCategories = "categories"
	TypeUsers      = "users"
)

type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    any                     `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

type Identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship marshals a missing link as {"data": null}.
type Relationship struct {
	Data *Identifier `json:"data"`
}

// Document is a top-level response body. Included and Meta are dropped when empty.
type Document struct {
	Data     any            `json:"data"`
	Included []Resource     `json:"included,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type ErrorObject struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// WriteRequest is the part of a write body that survived envelope validation.
type WriteRequest struct {
	ID            string
	Attributes    json.RawMessage
	Relationships map[string]json.RawMessage
}
