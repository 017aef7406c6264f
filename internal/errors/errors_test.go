package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancedErrorWrapping(t *testing.T) {
	t.Parallel()

	base := NewStd("record not found")
	ee := New(base).
		Component("datastore").
		Category(CategoryNotFound).
		Context("alert_id", 42).
		Build()

	assert.Equal(t, "record not found", ee.Error())
	assert.Equal(t, "datastore", ee.Component)
	require.ErrorIs(t, ee, base)
	assert.Equal(t, 42, ee.Context["alert_id"])
}

func TestCategoryChecks(t *testing.T) {
	t.Parallel()

	notFound := NotFoundError("alert %d not found", 7)
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsValidation(notFound))

	validation := ValidationError("noise_level is required")
	assert.True(t, IsValidation(validation))
	assert.False(t, IsNotFound(validation))

	// A wrapped enhanced error keeps its category visible through the chain.
	wrapped := fmt.Errorf("handling alert: %w", notFound)
	assert.True(t, IsNotFound(wrapped))
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	ee := Newf("boom").Build()
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}
