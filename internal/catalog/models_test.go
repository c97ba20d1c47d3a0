package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwipeValid(t *testing.T) {
	assert.True(t, Swipe{Direction: DirectionLeft}.Valid())
	assert.True(t, Swipe{Direction: DirectionRight}.Valid())
	assert.False(t, Swipe{Direction: "up"}.Valid())
	assert.False(t, Swipe{Direction: "Left"}.Valid())
	assert.False(t, Swipe{}.Valid())
}
