package tracking

import (
	"fmt"
	"time"
)

const (
	// MinAlertThreshold and MaxAlertThreshold bound the configurable
	// stations-away threshold.
	MinAlertThreshold     = 1
	MaxAlertThreshold     = 5
	DefaultAlertThreshold = 2

	// alertHistorySize bounds the in-memory event log served by the API.
	alertHistorySize = 50
)

// AlertSink receives fired alerts. Implementations deliver to a push or
// local notification transport; delivery failures must never reach the
// update loop.
type AlertSink interface {
	Deliver(alert Alert)
}

// AlertSinkFunc adapts a function to the AlertSink interface.
type AlertSinkFunc func(alert Alert)

func (f AlertSinkFunc) Deliver(alert Alert) { f(alert) }

// AlertManager decides exactly when a proximity or arrival notification
// fires. Each distinct remaining-count value fires at most once per journey;
// the arrival alert fires once and then the journey stays quiet.
type AlertManager struct {
	sink      AlertSink
	threshold int

	triggeredThresholds map[int]bool
	arrivalNotified     bool

	history []Alert
}

// NewAlertManager creates a manager with the default threshold.
func NewAlertManager(sink AlertSink) *AlertManager {
	return &AlertManager{
		sink:                sink,
		threshold:           DefaultAlertThreshold,
		triggeredThresholds: make(map[int]bool),
	}
}

// SetThreshold configures how many stations away the proximity alert fires.
func (m *AlertManager) SetThreshold(threshold int) error {
	if threshold < MinAlertThreshold || threshold > MaxAlertThreshold {
		return fmt.Errorf("alert threshold must be between %d and %d, got %d", MinAlertThreshold, MaxAlertThreshold, threshold)
	}
	m.threshold = threshold
	return nil
}

// Threshold returns the configured stations-away threshold.
func (m *AlertManager) Threshold() int {
	return m.threshold
}

// Reset clears the triggered set and the arrival flag. Called at journey
// start.
func (m *AlertManager) Reset() {
	m.triggeredThresholds = make(map[int]bool)
	m.arrivalNotified = false
	m.history = nil
}

// HandleProgression inspects the journey state after an update and fires
// any due alert. etaText optionally annotates proximity alerts.
func (m *AlertManager) HandleProgression(state *ProgressionState, etaText string, now time.Time) {
	if state == nil {
		return
	}

	if state.HasArrived {
		if m.arrivalNotified {
			return
		}
		m.arrivalNotified = true
		m.fire(Alert{
			Kind:        AlertArrival,
			StationName: state.Destination.Name,
			Timestamp:   now,
		})
		return
	}

	remaining := state.RemainingCount
	if remaining <= 0 || remaining > m.threshold {
		return
	}
	if m.triggeredThresholds[remaining] {
		return
	}
	m.triggeredThresholds[remaining] = true

	m.fire(Alert{
		Kind:         AlertProximity,
		StationName:  state.Destination.Name,
		StationsAway: remaining,
		ETA:          etaText,
		Timestamp:    now,
	})
}

// Events returns the alerts fired so far this journey, oldest first.
func (m *AlertManager) Events() []Alert {
	out := make([]Alert, len(m.history))
	copy(out, m.history)
	return out
}

// fire records the alert and hands it to the sink without blocking the
// update loop.
func (m *AlertManager) fire(alert Alert) {
	m.history = append(m.history, alert)
	if len(m.history) > alertHistorySize {
		m.history = m.history[len(m.history)-alertHistorySize:]
	}

	if m.sink != nil {
		go m.sink.Deliver(alert)
	}
}
