package postgres

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmitReturnsResult(t *testing.T) {
	e := NewExecutor(2, nil)
	defer e.Close()

	f := Submit(e, func() int { return 42 })
	assert.Equal(t, 42, f.Get())
	assert.Equal(t, 42, f.Get(), "Get can be called again")
}

func TestExecutorRunsTasksConcurrently(t *testing.T) {
	e := NewExecutor(4, nil)
	defer e.Close()

	release := make(chan struct{})
	var started atomic.Int32
	futures := make([]*Future[bool], 4)
	for i := range futures {
		futures[i] = Submit(e, func() bool {
			started.Add(1)
			<-release
			return true
		})
	}

	assert.Eventually(t, func() bool { return started.Load() == 4 }, time.Second, 5*time.Millisecond)
	close(release)
	for _, f := range futures {
		assert.True(t, f.Get())
	}
}

func TestExecutorCloseDrainsQueue(t *testing.T) {
	e := NewExecutor(1, nil)

	var ran atomic.Int32
	for range 10 {
		e.Post(func() { ran.Add(1) })
	}
	e.Close()
	assert.Equal(t, int32(10), ran.Load())
	assert.False(t, e.Post(func() {}))
}

func TestSubmitAfterCloseRunsInline(t *testing.T) {
	e := NewExecutor(1, nil)
	e.Close()

	f := Submit(e, func() string { return "inline" })
	select {
	case <-f.Done():
	default:
		t.Fatal("future should be complete when Submit returns")
	}
	assert.Equal(t, "inline", f.Get())
}

func TestExecutorSurvivesPanic(t *testing.T) {
	e := NewExecutor(1, nil)
	defer e.Close()

	bad := Submit(e, func() int { panic("boom") })
	assert.Equal(t, 0, bad.Get())
	assert.ErrorIs(t, bad.Err(), ErrTaskPanicked)
	assert.ErrorContains(t, bad.Err(), "boom")

	good := Submit(e, func() int { return 7 })
	assert.Equal(t, 7, good.Get())
	assert.NoError(t, good.Err())
}
