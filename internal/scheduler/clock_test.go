package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockFiresDueTimers(t *testing.T) {
	c := NewFakeClock(epoch)
	short := c.NewTimer(time.Second)
	long := c.NewTimer(3 * time.Second)
	assert.Equal(t, 2, c.Pending())

	c.Advance(time.Second)
	select {
	case at := <-short.C():
		assert.Equal(t, epoch.Add(time.Second), at)
	default:
		t.Fatal("short timer did not fire")
	}
	select {
	case <-long.C():
		t.Fatal("long timer fired early")
	default:
	}
	assert.Equal(t, 1, c.Pending())

	assert.True(t, long.Stop())
	assert.False(t, long.Stop())
	assert.Zero(t, c.Pending())
	assert.Equal(t, epoch.Add(time.Second), c.Now())
}

func TestFakeClockZeroDuration(t *testing.T) {
	c := NewFakeClock(epoch)
	tm := c.NewTimer(0)
	select {
	case <-tm.C():
	default:
		t.Fatal("zero timer did not fire")
	}
	assert.Zero(t, c.Pending())
}
