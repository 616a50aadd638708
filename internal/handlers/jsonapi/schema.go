package jsonapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"todoTracker/internal/service"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	todoSchema     = mustCompile("schemas/todo.json")
	categorySchema = mustCompile("schemas/category.json")
	userSchema     = mustCompile("schemas/user.json")
)

func mustCompile(path string) *jsonschema.Schema {
	data, err := schemaFiles.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("jsonapi: read %s: %v", path, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(path, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("jsonapi: add %s: %v", path, err))
	}
	return compiler.MustCompile(path)
}

// validateAttributes checks JSON types only; business rules live in the services.
func validateAttributes(schema *jsonschema.Schema, raw json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return service.NewValidationError(service.Invalid("attributes", "Attributes must be an object"))
	}

	err := schema.Validate(doc)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("validate attributes: %w", err)
	}

	byField := make(map[string]string)
	collectSchemaErrors(ve, byField)

	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	violations := make([]service.FieldError, 0, len(fields))
	for _, field := range fields {
		violations = append(violations, service.Invalid(field, byField[field]))
	}
	return service.NewValidationError(violations...)
}

// collectSchemaErrors keeps the first leaf message for every attribute.
func collectSchemaErrors(err *jsonschema.ValidationError, byField map[string]string) {
	if len(err.Causes) == 0 {
		field := attributeName(err.InstanceLocation)
		if _, seen := byField[field]; !seen {
			byField[field] = fmt.Sprintf("%s is invalid: %s", humanize(field), err.Message)
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, byField)
	}
}

func attributeName(pointer string) string {
	name := strings.TrimPrefix(pointer, "/")
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "attributes"
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(name)
}

// humanize turns "sort-order" into "Sort order".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "-", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
