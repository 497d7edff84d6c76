package rationaltime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeRangeContainsHalfOpen(t *testing.T) {
	r := NewTimeRange(New(0, 1), New(10, 1))
	assert.True(t, r.Contains(New(0, 1)))
	assert.True(t, r.Contains(New(9, 1)))
	assert.False(t, r.Contains(New(10, 1)))
}

func TestAdjacentRangesDoNotOverlap(t *testing.T) {
	a := NewTimeRange(New(0, 1), New(10, 1))
	b := NewTimeRange(New(10, 1), New(10, 1))
	assert.False(t, a.Overlaps(b))
}
