package tracking

import (
	"context"
	"sync"

	"linetracker.onebusaway.org/internal/geo"
)

// PositionSource abstracts the platform position provider. Subscribe returns
// a channel of raw fixes that closes when the context is cancelled, or an
// error when the service/permission checks fail.
type PositionSource interface {
	Subscribe(ctx context.Context) (<-chan RawFix, error)
}

// ChannelSource is a PositionSource fed by explicit Push calls. It is the
// adapter used by the HTTP ingestion endpoint and by tests.
type ChannelSource struct {
	fixes chan RawFix
}

// NewChannelSource creates a source with a small delivery buffer.
func NewChannelSource() *ChannelSource {
	return &ChannelSource{
		fixes: make(chan RawFix, 16),
	}
}

// Subscribe returns the fix channel.
func (s *ChannelSource) Subscribe(ctx context.Context) (<-chan RawFix, error) {
	return s.fixes, nil
}

// Push delivers a fix to the subscriber. It never blocks: when the
// subscriber is not draining, the fix is dropped, matching how a device
// stream overwrites stale samples.
func (s *ChannelSource) Push(fix RawFix) bool {
	select {
	case s.fixes <- fix:
		return true
	default:
		return false
	}
}

// LocationTracker owns the raw position stream. It repairs missing speed
// values from successive fixes, feeds a speed smoother, and hands normalized
// LocationUpdate values to its handler. The tracker is either idle or
// active; no update is emitted while idle.
type LocationTracker struct {
	mu       sync.Mutex
	source   PositionSource
	handler  func(LocationUpdate)
	smoother *SpeedSmoother

	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastFix *RawFix
}

// NewLocationTracker creates an idle tracker. handler is invoked for every
// normalized update, on the tracker's delivery goroutine.
func NewLocationTracker(source PositionSource, handler func(LocationUpdate)) *LocationTracker {
	return &LocationTracker{
		source:   source,
		handler:  handler,
		smoother: NewSpeedSmoother(liveSmoothingWindow),
	}
}

// Start begins consuming the position source. It is a no-op when already
// active and returns false, without any state change, when the source cannot
// be subscribed.
func (t *LocationTracker) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		return true
	}

	streamCtx, cancel := context.WithCancel(ctx)
	fixes, err := t.source.Subscribe(streamCtx)
	if err != nil {
		cancel()
		return false
	}

	t.active = true
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.consume(streamCtx, fixes, t.done)
	return true
}

// Stop cancels the underlying stream and clears the smoothing history. It is
// a no-op when idle.
func (t *LocationTracker) Stop() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	cancel := t.cancel
	done := t.done
	t.cancel = nil
	t.mu.Unlock()

	cancel()
	<-done

	t.mu.Lock()
	t.smoother.Reset()
	t.lastFix = nil
	t.mu.Unlock()
}

// Ingest normalizes one fix and hands it to the handler on the caller's
// goroutine. It is the synchronous ingestion path used alongside the
// subscribed stream; ok is false while the tracker is idle.
func (t *LocationTracker) Ingest(fix RawFix) (LocationUpdate, bool) {
	update, ok := t.normalize(fix)
	if ok {
		t.handler(update)
	}
	return update, ok
}

// IsActive reports whether the tracker is consuming fixes.
func (t *LocationTracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *LocationTracker) consume(ctx context.Context, fixes <-chan RawFix, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			update, accepted := t.normalize(fix)
			if accepted {
				t.handler(update)
			}
		}
	}
}

// normalize repairs the speed of a raw fix and produces a LocationUpdate.
func (t *LocationTracker) normalize(fix RawFix) (LocationUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return LocationUpdate{}, false
	}

	speed := fix.Speed
	if speed < 0 {
		speed = t.deriveSpeed(fix)
	}
	if speed < 0 {
		speed = 0
	}

	t.smoother.Add(speed)
	last := fix
	t.lastFix = &last

	return LocationUpdate{
		Lat:           fix.Lat,
		Lon:           fix.Lon,
		RawSpeed:      speed,
		SmoothedSpeed: t.smoother.Smoothed(),
		Accuracy:      fix.Accuracy,
		Timestamp:     fix.Timestamp,
	}, true
}

// deriveSpeed computes speed from the displacement since the previous fix.
// Without a previous fix, or with a non-positive elapsed time, it returns 0.
func (t *LocationTracker) deriveSpeed(fix RawFix) float64 {
	if t.lastFix == nil {
		return 0
	}
	elapsed := fix.Timestamp.Sub(t.lastFix.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	d := geo.Distance(t.lastFix.Lat, t.lastFix.Lon, fix.Lat, fix.Lon)
	return d / elapsed
}
