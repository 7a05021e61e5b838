package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerRunsLastTriggerOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var last atomic.Int32
	var calls atomic.Int32
	for i := int32(1); i <= 5; i++ {
		d.Trigger("a", func() {
			calls.Add(1)
			last.Store(i)
		})
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending("a"))
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	assert.True(t, d.Pending("a"))
	d.Cancel("a")
	assert.False(t, d.Pending("a"))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load())
}
