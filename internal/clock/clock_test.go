package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic(t *testing.T) {
	c := NewMonotonic()
	first := c.Nanotime()
	second := c.Nanotime()
	assert.GreaterOrEqual(t, int64(second), int64(first))
}

func TestManual(t *testing.T) {
	c := NewManual(10 * time.Microsecond)
	assert.Equal(t, 10*time.Microsecond, c.Nanotime())
	c.Advance(5 * time.Microsecond)
	assert.Equal(t, 15*time.Microsecond, c.Nanotime())
	c.Set(time.Millisecond)
	assert.Equal(t, time.Millisecond, c.Nanotime())
}
