package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainTimer "github.com/dialtimer/backend/internal/domain/timer"
)

func TestBroadcaster_ReplacesUnconsumed(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(domainTimer.TimerState{RemainingTimeMs: 3000})
	b.Publish(domainTimer.TimerState{RemainingTimeMs: 2000})

	got := <-ch
	assert.Equal(t, int64(2000), got.RemainingTimeMs)
	select {
	case <-ch:
		t.Fatal("only the latest snapshot should be buffered")
	default:
	}
}

func TestBroadcaster_LateSubscriberGetsLatest(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(domainTimer.TimerState{Status: domainTimer.StatusRunning})

	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	got := <-ch
	assert.Equal(t, domainTimer.StatusRunning, got.Status)
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch, unsubscribe := b.Subscribe()
	require.Equal(t, 1, b.Count())

	unsubscribe()
	unsubscribe()

	assert.Equal(t, 0, b.Count())
	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { b.Publish(domainTimer.TimerState{}) })
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()
	ch1, _ := b.Subscribe()
	ch2, unsubscribe := b.Subscribe()

	b.Close()
	_, open1 := <-ch1
	_, open2 := <-ch2
	assert.False(t, open1)
	assert.False(t, open2)
	assert.NotPanics(t, unsubscribe)
}
