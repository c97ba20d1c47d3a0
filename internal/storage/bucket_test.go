package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "generated/pred-1.mp4", escapePath("generated/pred-1.mp4"))
	assert.Equal(t, "generated/a%20b.mp4", escapePath("generated/a b.mp4"))
	assert.Equal(t, "a/b/c", escapePath("a/b/c"))
}
