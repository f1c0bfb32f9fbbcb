package webinarstate

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestCountdown_FiresExactlyOnce(t *testing.T) {
	var fires int32
	cd := NewCountdown(time.Now().Add(20*time.Millisecond), func() {
		atomic.AddInt32(&fires, 1)
	})

	cd.Start()
	cd.Start() // second start must not arm a second timer

	waitFor(t, func() bool { return cd.Fired() })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestCountdown_PastInstantFiresImmediately(t *testing.T) {
	var fires int32
	cd := NewCountdown(time.Now().Add(-time.Minute), func() {
		atomic.AddInt32(&fires, 1)
	})

	cd.Start()
	waitFor(t, func() bool { return cd.Fired() })
	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))
}

func TestCountdown_StopPreventsFiring(t *testing.T) {
	var fires int32
	cd := NewCountdown(time.Now().Add(30*time.Millisecond), func() {
		atomic.AddInt32(&fires, 1)
	})

	cd.Start()
	assert.True(t, cd.Stop())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))
	assert.False(t, cd.Fired())
	assert.False(t, cd.Stop()) // already stopped
}

func TestCountdown_StopAfterFireReportsFalse(t *testing.T) {
	cd := NewCountdown(time.Now(), func() {})
	cd.Start()
	waitFor(t, func() bool { return cd.Fired() })
	assert.False(t, cd.Stop())
}

func TestScheduler_ReschedulesAndCancels(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var firstFires, secondFires int32
	s.Schedule(1, time.Now().Add(time.Hour), func() { atomic.AddInt32(&firstFires, 1) })
	s.Schedule(1, time.Now().Add(20*time.Millisecond), func() { atomic.AddInt32(&secondFires, 1) })

	waitFor(t, func() bool { return atomic.LoadInt32(&secondFires) == 1 })
	assert.Equal(t, int32(0), atomic.LoadInt32(&firstFires))

	var cancelled int32
	s.Schedule(2, time.Now().Add(30*time.Millisecond), func() { atomic.AddInt32(&cancelled, 1) })
	s.Cancel(2)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&cancelled))
}

func TestScheduler_CloseStopsEverything(t *testing.T) {
	s := NewScheduler()

	var fires int32
	s.Schedule(1, time.Now().Add(30*time.Millisecond), func() { atomic.AddInt32(&fires, 1) })
	s.Close()

	// New work after close is ignored.
	s.Schedule(2, time.Now().Add(10*time.Millisecond), func() { atomic.AddInt32(&fires, 1) })

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))
}
