package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveInPlace(t *testing.T) {
	base := filepath.Join("/bench", "line-3")
	abs := filepath.Join("/srv", "grids")

	grids := "grids/"
	results := abs
	empty := ""

	ResolveInPlace(base, &grids, &results, &empty, nil)

	assert.Equal(t, filepath.Join(base, "grids"), grids)
	assert.Equal(t, abs, results)
	assert.Empty(t, empty)
}
