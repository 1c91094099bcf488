package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelColumns(t *testing.T) {
	assert.Equal(t, []string{"internal_id", "doc"}, modelColumns(documentRow{}))
}

func TestColumnDifference(t *testing.T) {
	assert.Equal(t, []string{"legacy"}, columnDifference([]string{"doc", "legacy"}, []string{"doc", "id"}))
	assert.Empty(t, columnDifference([]string{"doc"}, []string{"doc"}))
}
