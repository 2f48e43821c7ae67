package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveAll[T any](rc *RingChannel[T]) []T {
	var got []T
	for {
		v, ok := rc.TryReceive()
		if !ok {
			return got
		}
		got = append(got, v)
	}
}

func TestRingChannelOverwritesOldest(t *testing.T) {
	// GOAL: Verify a full ring keeps the newest values in publish order
	//
	// TEST SCENARIO: Publish 0..99 into a 4-slot ring → drain → a consecutive run ending in 99

	rc := NewRingChannel[int](4)
	for i := 0; i < 100; i++ {
		rc.Send(i)
	}

	got := receiveAll(rc)
	require.NotEmpty(t, got)
	require.LessOrEqual(t, len(got), rc.Cap())
	for i, v := range got {
		assert.Equal(t, 100-len(got)+i, v, "ring MUST keep the newest values in order")
	}

	m := rc.Metrics()
	assert.Equal(t, int64(100), m.Published)
	assert.Equal(t, int64(100-len(got)), m.Dropped, "every overwritten value MUST be counted")
	assert.Equal(t, int64(len(got)), m.Delivered)
}

func TestRingChannelSendReportsDrop(t *testing.T) {
	rc := NewRingChannel[string](2)

	assert.False(t, rc.Send("a"), "first send MUST NOT drop")

	dropped := false
	for i := 0; i < 64 && !dropped; i++ {
		dropped = rc.Send("b")
	}
	assert.True(t, dropped, "sending into a full ring MUST report a drop")
	assert.GreaterOrEqual(t, rc.Cap(), 2)
}

func TestRingChannelClose(t *testing.T) {
	rc := NewRingChannel[int](4)
	rc.Send(1)
	rc.Close()
	rc.Close()

	assert.True(t, rc.Send(2), "send after close MUST be dropped")

	var got []int
	for v := range rc.C() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1}, got, "buffered values MUST survive close")

	_, ok := rc.TryReceive()
	assert.False(t, ok)
}

func TestRingChannelDrainsInOrder(t *testing.T) {
	rc := NewRingChannel[int](8)
	out := rc.C()

	var got []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range out {
			got = append(got, v)
		}
	}()

	for i := 1; i <= 3; i++ {
		rc.Send(i)
	}
	rc.Close()
	<-done

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, int64(3), rc.Metrics().Delivered)
}

func TestRingChannelConcurrentPublishers(t *testing.T) {
	rc := NewRingChannel[int](8)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rc.Send(i)
			}
		}()
	}
	wg.Wait()

	m := rc.Metrics()
	assert.Equal(t, int64(400), m.Published)
	assert.Equal(t, int64(400), m.Dropped+int64(rc.Len()), "every value MUST be either buffered or counted as dropped")
}

func TestNewRingChannelRejectsZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { NewRingChannel[int](0) })
}
