package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionConstructors(t *testing.T) {
	meta := CollectorMetadata{ID: "docker", Title: "Docker"}

	ok := SuccessSection(meta, nil)
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Nil(t, ok.Summary)
	assert.Equal(t, map[string]any{}, ok.Body)
	assert.Equal(t, []string{}, ok.Notes)

	degraded := DegradedSection(meta, "daemon unreachable", nil)
	assert.Equal(t, StatusDegraded, degraded.Status)
	require.NotNil(t, degraded.Summary)
	assert.Equal(t, "daemon unreachable", *degraded.Summary)

	failed := ErrorSection(meta, "boom")
	assert.Equal(t, StatusError, failed.Status)
	require.NotNil(t, failed.Summary)
	assert.Equal(t, "boom", *failed.Summary)
	assert.Equal(t, map[string]any{"error": "boom"}, failed.Body)
}
