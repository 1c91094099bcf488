package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONBTruthy(t *testing.T) {
	expr, args := jsonbTruthy("doc", []string{"isFavorite", "favourite"})

	assert.True(t, strings.HasPrefix(expr, "CASE jsonb_typeof("))
	assert.Contains(t, expr, "::text::numeric <> 0")
	assert.NotContains(t, expr, "'0.0'")
	assert.Equal(t, strings.Count(expr, "?"), len(args))

	// each of the five value references binds the keys in order
	for i := 0; i < len(args); i += 2 {
		assert.Equal(t, []any{"isFavorite", "favourite"}, args[i:i+2])
	}
}

func TestJSONBRemove(t *testing.T) {
	expr, args := jsonbRemove("doc", []string{"ProjectName", "dayleft"})
	assert.Equal(t, "doc - ?::text - ?::text", expr)
	assert.Equal(t, []any{"ProjectName", "dayleft"}, args)

	expr, args = jsonbRemove("doc", nil)
	assert.Equal(t, "doc", expr)
	assert.Empty(t, args)
}
