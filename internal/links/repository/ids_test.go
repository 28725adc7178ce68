package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taha-association/links-backend/internal/links/repository"
)

func TestNewProjectID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := repository.NewProjectID()
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "id %q generated twice", id)
		seen[id] = true
	}
}
