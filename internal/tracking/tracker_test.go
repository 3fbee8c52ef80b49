package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Subscribe(ctx context.Context) (<-chan RawFix, error) {
	return nil, assert.AnError
}

func TestTrackerStartStop(t *testing.T) {
	source := NewChannelSource()
	tracker := NewLocationTracker(source, func(LocationUpdate) {})

	assert.False(t, tracker.IsActive())

	require.True(t, tracker.Start(context.Background()))
	assert.True(t, tracker.IsActive())

	// Starting again is a no-op.
	require.True(t, tracker.Start(context.Background()))

	tracker.Stop()
	assert.False(t, tracker.IsActive())

	// Stopping again is a no-op too.
	tracker.Stop()
}

func TestTrackerStartFailsWhenSourceUnavailable(t *testing.T) {
	tracker := NewLocationTracker(failingSource{}, func(LocationUpdate) {})

	assert.False(t, tracker.Start(context.Background()))
	assert.False(t, tracker.IsActive())
}

func TestTrackerIgnoresFixesWhileIdle(t *testing.T) {
	tracker := NewLocationTracker(NewChannelSource(), func(LocationUpdate) {
		t.Fatal("no update should be emitted while idle")
	})

	_, ok := tracker.Ingest(RawFix{Lat: 47.0, Lon: testLon, Speed: 5, Timestamp: time.Now()})
	assert.False(t, ok)
}

func TestTrackerPassesThroughReportedSpeed(t *testing.T) {
	var got []LocationUpdate
	tracker := NewLocationTracker(NewChannelSource(), func(u LocationUpdate) {
		got = append(got, u)
	})
	require.True(t, tracker.Start(context.Background()))
	defer tracker.Stop()

	update, ok := tracker.Ingest(RawFix{Lat: 47.0, Lon: testLon, Speed: 12.5, Accuracy: 4, Timestamp: time.Now()})
	require.True(t, ok)

	assert.Equal(t, 12.5, update.RawSpeed)
	assert.InDelta(t, 12.5, update.SmoothedSpeed, 1e-9)
	require.Len(t, got, 1)
	assert.Equal(t, update, got[0])
}

func TestTrackerDerivesMissingSpeed(t *testing.T) {
	tracker := NewLocationTracker(NewChannelSource(), func(LocationUpdate) {})
	require.True(t, tracker.Start(context.Background()))
	defer tracker.Stop()

	start := time.Now()

	// First fix with unknown speed: nothing to derive from.
	first, ok := tracker.Ingest(RawFix{Lat: latOffset(0), Lon: testLon, Speed: -1, Timestamp: start})
	require.True(t, ok)
	assert.Equal(t, 0.0, first.RawSpeed)

	// 100 meters north, 10 seconds later: 10 m/s.
	second, ok := tracker.Ingest(RawFix{Lat: latOffset(100), Lon: testLon, Speed: -1, Timestamp: start.Add(10 * time.Second)})
	require.True(t, ok)
	assert.InDelta(t, 10.0, second.RawSpeed, 0.05)
}

func TestTrackerDerivedSpeedZeroWhenTimeDoesNotAdvance(t *testing.T) {
	tracker := NewLocationTracker(NewChannelSource(), func(LocationUpdate) {})
	require.True(t, tracker.Start(context.Background()))
	defer tracker.Stop()

	at := time.Now()
	_, ok := tracker.Ingest(RawFix{Lat: latOffset(0), Lon: testLon, Speed: -1, Timestamp: at})
	require.True(t, ok)

	update, ok := tracker.Ingest(RawFix{Lat: latOffset(100), Lon: testLon, Speed: -1, Timestamp: at})
	require.True(t, ok)
	assert.Equal(t, 0.0, update.RawSpeed)
}

func TestTrackerStopClearsSmoothingHistory(t *testing.T) {
	tracker := NewLocationTracker(NewChannelSource(), func(LocationUpdate) {})
	require.True(t, tracker.Start(context.Background()))

	at := time.Now()
	_, ok := tracker.Ingest(RawFix{Lat: latOffset(0), Lon: testLon, Speed: 10, Timestamp: at})
	require.True(t, ok)

	tracker.Stop()
	require.True(t, tracker.Start(context.Background()))
	defer tracker.Stop()

	// After a restart the smoother starts from scratch: a single 2 m/s
	// sample is not averaged against the earlier 10 m/s one.
	update, ok := tracker.Ingest(RawFix{Lat: latOffset(0), Lon: testLon, Speed: 2, Timestamp: at.Add(time.Minute)})
	require.True(t, ok)
	assert.InDelta(t, 2.0, update.SmoothedSpeed, 1e-9)
}

func TestTrackerConsumesSubscribedStream(t *testing.T) {
	source := NewChannelSource()
	updates := make(chan LocationUpdate, 1)
	tracker := NewLocationTracker(source, func(u LocationUpdate) {
		updates <- u
	})
	require.True(t, tracker.Start(context.Background()))
	defer tracker.Stop()

	require.True(t, source.Push(RawFix{Lat: 47.0, Lon: testLon, Speed: 7, Timestamp: time.Now()}))

	select {
	case u := <-updates:
		assert.Equal(t, 7.0, u.RawSpeed)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update from stream")
	}
}
