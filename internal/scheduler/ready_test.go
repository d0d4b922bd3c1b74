package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadySignal_NotifiesSubscribers(t *testing.T) {
	signal := NewReadySignal()
	assert.False(t, signal.Ready())

	var attached int
	signal.Subscribe(func() { attached++ })

	signal.Signal()
	assert.True(t, signal.Ready())
	assert.Equal(t, 1, attached)
}

func TestReadySignal_LateSubscriberFiresImmediately(t *testing.T) {
	signal := NewReadySignal()
	signal.Signal()

	var attached int
	signal.Subscribe(func() { attached++ })
	assert.Equal(t, 1, attached, "subscriber after the signal must run immediately")
}

func TestReadySignal_ResignalReattachesWithoutDuplicates(t *testing.T) {
	signal := NewReadySignal()

	handles := 0
	signal.Subscribe(func() {
		// Tear down before re-attaching, so repeated signals do not
		// accumulate handles.
		handles = 0
		handles++
	})

	signal.Signal()
	signal.Signal()
	signal.Signal()
	assert.Equal(t, 1, handles)
}

func TestReadySignal_Cancel(t *testing.T) {
	signal := NewReadySignal()

	var attached int
	cancel := signal.Subscribe(func() { attached++ })
	cancel()

	signal.Signal()
	assert.Equal(t, 0, attached)
}
