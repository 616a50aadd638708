package service_test

import (
	"encoding/json"
	"testing"

	"todoTracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	var attrs struct {
		Name  service.Optional[string] `json:"name"`
		Notes service.Optional[string] `json:"notes"`
		Order service.Optional[int]    `json:"sort-order"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x","notes":null}`), &attrs))

	assert.Equal(t, service.Some("x"), attrs.Name)
	assert.Equal(t, service.Null[string](), attrs.Notes)
	assert.False(t, attrs.Order.Set)

	assert.Nil(t, attrs.Notes.Ptr())
	assert.Nil(t, attrs.Order.Ptr())
	require.NotNil(t, attrs.Name.Ptr())
	assert.Equal(t, "x", *attrs.Name.Ptr())
}
