package tracking

import (
	"fmt"
	"math"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/geo"
)

const (
	directionHistorySize = 10
	// minInferenceSamples is the minimum history length before bearing
	// inference is attempted.
	minInferenceSamples = 3
	// minInferenceDisplacement is the net movement in meters required
	// between the oldest and newest sample.
	minInferenceDisplacement = 50.0
	// overrideThreshold is the confidence at which an inferred direction
	// replaces the active one.
	overrideThreshold = 0.85
	// confidentThreshold marks a result trustworthy enough to contradict
	// the active direction (wrong-direction warnings).
	confidentThreshold = 0.7
	// consistencyBonusMax is the largest confidence boost earned by a
	// history of mutually consistent leg bearings.
	consistencyBonusMax = 0.20
	// consistentLegDegrees is the leg-to-leg bearing tolerance counted as
	// consistent travel.
	consistentLegDegrees = 45.0
)

// DirectionInferenceEngine infers travel direction from recent movement
// against the route's own geometry.
type DirectionInferenceEngine struct {
	stations []catalog.Station

	// routeBearing points from the lowest to the highest northbound-ranked
	// station; the southbound bearing is its reciprocal.
	routeBearing float64

	history []LocationUpdate
}

// NewDirectionInferenceEngine creates an engine for the given line.
func NewDirectionInferenceEngine(c *catalog.Catalog) *DirectionInferenceEngine {
	ordered := c.OrderedBy(catalog.Northbound)
	first, last := ordered[0], ordered[len(ordered)-1]

	return &DirectionInferenceEngine{
		stations:     ordered,
		routeBearing: geo.InitialBearing(first.Lat, first.Lon, last.Lat, last.Lon),
	}
}

// AddUpdate records a location sample into the bounded history.
func (e *DirectionInferenceEngine) AddUpdate(update LocationUpdate) {
	if len(e.history) == directionHistorySize {
		e.history = e.history[1:]
	}
	e.history = append(e.history, update)
}

// Reset clears the history buffer. Called at journey start.
func (e *DirectionInferenceEngine) Reset() {
	e.history = e.history[:0]
}

// InferDirection infers travel direction by comparing the user's movement
// bearing with the route bearing. Results with too little data carry no
// direction and zero confidence.
func (e *DirectionInferenceEngine) InferDirection() InferenceResult {
	if len(e.history) < minInferenceSamples {
		return InferenceResult{
			Reasoning: fmt.Sprintf("need at least %d samples, have %d", minInferenceSamples, len(e.history)),
		}
	}

	oldest := e.history[0]
	newest := e.history[len(e.history)-1]

	displacement := geo.Distance(oldest.Lat, oldest.Lon, newest.Lat, newest.Lon)
	if displacement < minInferenceDisplacement {
		return InferenceResult{
			Reasoning: fmt.Sprintf("net displacement %.0fm below %.0fm threshold", displacement, minInferenceDisplacement),
		}
	}

	userBearing := geo.InitialBearing(oldest.Lat, oldest.Lon, newest.Lat, newest.Lon)
	southBearing := math.Mod(e.routeBearing+180, 360)

	northDiff := geo.BearingDifference(userBearing, e.routeBearing)
	southDiff := geo.BearingDifference(userBearing, southBearing)

	direction := catalog.Northbound
	diff := northDiff
	if southDiff < northDiff {
		direction = catalog.Southbound
		diff = southDiff
	}

	confidence := 1 - math.Min(diff, 90)/90
	bonus := consistencyBonusMax * e.consistencyFraction()
	confidence = math.Max(0, math.Min(1, confidence+bonus))

	return InferenceResult{
		Direction:      direction,
		Confidence:     confidence,
		Bearing:        userBearing,
		Reasoning:      fmt.Sprintf("bearing %.0f° vs route %.0f° (%s), off by %.0f°", userBearing, e.routeBearing, direction, diff),
		ShouldOverride: confidence >= overrideThreshold,
	}
}

// consistencyFraction returns the fraction of consecutive leg bearings in
// the history that stay within consistentLegDegrees of the previous leg.
func (e *DirectionInferenceEngine) consistencyFraction() float64 {
	if len(e.history) < 3 {
		return 0
	}

	var legs []float64
	for i := 1; i < len(e.history); i++ {
		prev, curr := e.history[i-1], e.history[i]
		legs = append(legs, geo.InitialBearing(prev.Lat, prev.Lon, curr.Lat, curr.Lon))
	}

	consistent := 0
	for i := 1; i < len(legs); i++ {
		if geo.BearingDifference(legs[i], legs[i-1]) < consistentLegDegrees {
			consistent++
		}
	}
	return float64(consistent) / float64(len(legs)-1)
}

// InferFromStationApproach is the fallback signal: it decides direction from
// which of the two nearest stations the vehicle is closing in on. Fixed
// confidence 0.75 when it can decide, 0.3 otherwise.
func (e *DirectionInferenceEngine) InferFromStationApproach() InferenceResult {
	if len(e.history) < 2 {
		return InferenceResult{
			Confidence: 0.3,
			Reasoning:  "station approach unclear: need two samples",
		}
	}

	prev := e.history[len(e.history)-2]
	curr := e.history[len(e.history)-1]

	first, second := e.twoNearestStations(curr)
	if second == nil {
		return InferenceResult{
			Confidence: 0.3,
			Reasoning:  "station approach unclear: single-station route",
		}
	}

	firstDelta := geo.Distance(curr.Lat, curr.Lon, first.Lat, first.Lon) -
		geo.Distance(prev.Lat, prev.Lon, first.Lat, first.Lon)
	secondDelta := geo.Distance(curr.Lat, curr.Lon, second.Lat, second.Lon) -
		geo.Distance(prev.Lat, prev.Lon, second.Lat, second.Lon)

	var toward, away *catalog.Station
	switch {
	case firstDelta < 0 && secondDelta > 0:
		toward, away = first, second
	case secondDelta < 0 && firstDelta > 0:
		toward, away = second, first
	default:
		return InferenceResult{
			Confidence: 0.3,
			Reasoning:  "station approach unclear: distance deltas do not disagree",
		}
	}

	direction := catalog.Northbound
	if toward.Order(catalog.Northbound) < away.Order(catalog.Northbound) {
		direction = catalog.Southbound
	}

	return InferenceResult{
		Direction:  direction,
		Confidence: 0.75,
		Reasoning:  fmt.Sprintf("approaching %s, leaving %s", toward.Name, away.Name),
	}
}

func (e *DirectionInferenceEngine) twoNearestStations(u LocationUpdate) (*catalog.Station, *catalog.Station) {
	var first, second *catalog.Station
	firstDist, secondDist := math.MaxFloat64, math.MaxFloat64

	for i := range e.stations {
		st := &e.stations[i]
		d := geo.Distance(u.Lat, u.Lon, st.Lat, st.Lon)
		switch {
		case d < firstDist:
			second, secondDist = first, firstDist
			first, firstDist = st, d
		case d < secondDist:
			second, secondDist = st, d
		}
	}
	return first, second
}

// DirectionManager owns the active travel direction. A manually selected
// direction persists until the user re-selects or re-enables auto-inference;
// while auto-inference is on, any override-strength result replaces the
// active direction.
type DirectionManager struct {
	active      catalog.Direction
	autoEnabled bool
}

// NewDirectionManager starts with auto-inference enabled and no active
// direction.
func NewDirectionManager() *DirectionManager {
	return &DirectionManager{autoEnabled: true}
}

// Active returns the currently selected direction, which may be empty.
func (m *DirectionManager) Active() catalog.Direction {
	return m.active
}

// AutoEnabled reports whether inferred directions may replace the active one.
func (m *DirectionManager) AutoEnabled() bool {
	return m.autoEnabled
}

// SetManual pins the direction and disables auto-inference.
func (m *DirectionManager) SetManual(d catalog.Direction) {
	m.active = d
	m.autoEnabled = false
}

// EnableAuto re-enables auto-inference without dropping the active direction.
func (m *DirectionManager) EnableAuto() {
	m.autoEnabled = true
}

// Apply feeds an inference result through the selection policy and returns
// the effective direction afterwards.
func (m *DirectionManager) Apply(result InferenceResult) catalog.Direction {
	if m.autoEnabled && result.ShouldOverride && result.Direction != "" {
		m.active = result.Direction
	}
	return m.active
}

// Reset returns the manager to its initial state.
func (m *DirectionManager) Reset() {
	m.active = ""
	m.autoEnabled = true
}
