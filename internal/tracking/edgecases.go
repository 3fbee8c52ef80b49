package tracking

import (
	"fmt"
	"math"
	"sort"
	"time"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/geo"
)

const (
	// stalenessCheckInterval is the cadence of the GPS staleness tick.
	stalenessCheckInterval = 5 * time.Second
	// weakSignalAfter and gpsLostAfter are the staleness cutoffs.
	weakSignalAfter = 15 * time.Second
	gpsLostAfter    = 30 * time.Second
	// lowSpeedStreak is the number of consecutive slow updates required
	// before a speed warning is raised.
	lowSpeedStreak = 5
	// offRouteDistance is how far from every station counts as off-route.
	offRouteDistance = 500.0
)

// EdgeCaseMonitor raises and clears warnings for GPS loss, low speed, wrong
// direction, and off-route travel. Warnings are keyed by type with
// replace-on-raise semantics.
type EdgeCaseMonitor struct {
	stations []catalog.Station

	lastUpdateAt    time.Time
	hasUpdate       bool
	lowSpeedCount   int
	stationaryCount int

	active map[WarningType]Warning
}

// NewEdgeCaseMonitor creates a monitor for the given line.
func NewEdgeCaseMonitor(c *catalog.Catalog) *EdgeCaseMonitor {
	return &EdgeCaseMonitor{
		stations: c.Stations(),
		active:   make(map[WarningType]Warning),
	}
}

// HandleUpdate processes an accepted location update: it clears staleness
// warnings, advances the speed counters, and checks route distance.
func (m *EdgeCaseMonitor) HandleUpdate(u LocationUpdate, now time.Time) {
	m.lastUpdateAt = now
	m.hasUpdate = true
	m.clear(WarningGPSWeakSignal)
	m.clear(WarningGPSLost)

	m.checkSpeed(u, now)
	m.checkOffRoute(u, now)
}

// CheckStaleness runs on the periodic tick and escalates warnings as the
// time since the last accepted update grows.
func (m *EdgeCaseMonitor) CheckStaleness(now time.Time) {
	if !m.hasUpdate {
		return
	}
	elapsed := now.Sub(m.lastUpdateAt)

	switch {
	case elapsed > gpsLostAfter:
		m.clear(WarningGPSWeakSignal)
		m.raise(Warning{
			Type:          WarningGPSLost,
			Severity:      SeverityCritical,
			Title:         "GPS signal lost",
			Message:       fmt.Sprintf("No position fix for %.0f seconds.", elapsed.Seconds()),
			Timestamp:     now,
			IsDismissible: false,
		})
	case elapsed > weakSignalAfter:
		m.raise(Warning{
			Type:          WarningGPSWeakSignal,
			Severity:      SeverityWarning,
			Title:         "Weak GPS signal",
			Message:       fmt.Sprintf("Last position fix was %.0f seconds ago.", elapsed.Seconds()),
			Timestamp:     now,
			IsDismissible: true,
		})
	}
}

// HandleDirection compares a confident inference against the active
// direction and raises or clears the wrong-direction warning.
func (m *EdgeCaseMonitor) HandleDirection(result InferenceResult, active catalog.Direction, now time.Time) {
	if active == "" || result.Direction == "" {
		return
	}
	if !result.IsConfident() {
		return
	}
	if result.Direction == active {
		m.clear(WarningWrongDirection)
		return
	}
	m.raise(Warning{
		Type:          WarningWrongDirection,
		Severity:      SeverityWarning,
		Title:         "Possibly traveling the wrong way",
		Message:       fmt.Sprintf("You selected %s but movement looks %s.", active, result.Direction),
		Timestamp:     now,
		IsDismissible: true,
	})
}

// ActiveWarnings returns the current warnings in a stable order.
func (m *EdgeCaseMonitor) ActiveWarnings() []Warning {
	out := make([]Warning, 0, len(m.active))
	for _, w := range m.active {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Dismiss removes a dismissible warning. It reports whether anything was
// dismissed.
func (m *EdgeCaseMonitor) Dismiss(warningType WarningType) bool {
	w, ok := m.active[warningType]
	if !ok || !w.IsDismissible {
		return false
	}
	delete(m.active, warningType)
	return true
}

// Reset clears all warnings and counters. Called at journey start and when
// tracking stops.
func (m *EdgeCaseMonitor) Reset() {
	m.active = make(map[WarningType]Warning)
	m.lowSpeedCount = 0
	m.stationaryCount = 0
	m.hasUpdate = false
}

func (m *EdgeCaseMonitor) checkSpeed(u LocationUpdate, now time.Time) {
	speed := u.SmoothedSpeed

	if speed >= slowTrafficThreshold {
		m.lowSpeedCount = 0
		m.stationaryCount = 0
		m.clear(WarningLowSpeed)
		m.clear(WarningStationary)
		return
	}

	m.lowSpeedCount++
	if speed < stationaryThreshold {
		m.stationaryCount++
	} else {
		m.stationaryCount = 0
	}

	if m.stationaryCount >= lowSpeedStreak {
		m.raise(Warning{
			Type:          WarningStationary,
			Severity:      SeverityInfo,
			Title:         "Vehicle stopped",
			Message:       "The vehicle has not moved for a while.",
			Timestamp:     now,
			IsDismissible: true,
		})
	} else if m.lowSpeedCount >= lowSpeedStreak {
		m.raise(Warning{
			Type:          WarningLowSpeed,
			Severity:      SeverityInfo,
			Title:         "Slow progress",
			Message:       "The vehicle is moving unusually slowly.",
			Timestamp:     now,
			IsDismissible: true,
		})
	}
}

func (m *EdgeCaseMonitor) checkOffRoute(u LocationUpdate, now time.Time) {
	minDistance := math.MaxFloat64
	for i := range m.stations {
		st := m.stations[i]
		if d := geo.Distance(u.Lat, u.Lon, st.Lat, st.Lon); d < minDistance {
			minDistance = d
		}
	}

	if minDistance > offRouteDistance {
		m.raise(Warning{
			Type:          WarningOffRoute,
			Severity:      SeverityWarning,
			Title:         "Off route",
			Message:       fmt.Sprintf("Nearest station is %.0fm away.", minDistance),
			Timestamp:     now,
			IsDismissible: true,
		})
		return
	}
	m.clear(WarningOffRoute)
}

func (m *EdgeCaseMonitor) raise(w Warning) {
	m.active[w.Type] = w
}

func (m *EdgeCaseMonitor) clear(warningType WarningType) {
	delete(m.active, warningType)
}
