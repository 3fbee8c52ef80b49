package tracking

import (
	"time"

	"linetracker.onebusaway.org/internal/geo"
)

const (
	// stationaryThreshold is the speed below which no ETA is projected.
	stationaryThreshold = 0.5
	// slowTrafficThreshold and goodTrafficThreshold bound the status labels.
	slowTrafficThreshold = 2.0
	goodTrafficThreshold = 15.0
	// currentSpeedWeight blends the instantaneous speed into the rolling
	// average when enough samples exist.
	currentSpeedWeight = 0.3
	// destinationSlowdownFactor accounts for intermediate stops that the
	// distance sum does not model.
	destinationSlowdownFactor = 1.2
	// minAverageSamples gates the blended projection.
	minAverageSamples = 3
)

// Status labels surfaced to the rider.
const (
	StatusLabelArrived    = "Arrived!"
	StatusLabelStopped    = "Vehicle stopped"
	StatusLabelGathering  = "Gathering speed data..."
	StatusLabelSlow       = "Slow traffic"
	StatusLabelGood       = "Good traffic flow"
	StatusLabelNormal     = "Normal traffic"
)

// ETAEngine computes remaining distance and time estimates. The last result
// is retained between updates.
type ETAEngine struct {
	smoother *SpeedSmoother
	last     ETAResult
}

// NewETAEngine creates an engine with its own speed-averaging window.
func NewETAEngine() *ETAEngine {
	return &ETAEngine{
		smoother: NewSpeedSmoother(etaSmoothingWindow),
	}
}

// Last returns the most recent result.
func (e *ETAEngine) Last() ETAResult {
	return e.last
}

// Reset discards the averaging window and the retained result.
func (e *ETAEngine) Reset() {
	e.smoother.Reset()
	e.last = ETAResult{}
}

// Update recomputes estimates for the given fix and journey state and
// retains the result. state may be nil when no journey is active.
func (e *ETAEngine) Update(u LocationUpdate, state *ProgressionState) ETAResult {
	e.smoother.Add(u.RawSpeed)

	current := u.RawSpeed
	average := e.smoother.Smoothed()
	effective, stationary := e.effectiveSpeed(current, average)

	result := ETAResult{
		CurrentSpeed: current,
		AverageSpeed: average,
		IsStationary: stationary,
	}

	if state != nil && len(state.Records) > 0 {
		result.DistanceToNextStation = e.distanceToNext(u, state)
		result.DistanceToDestination = e.distanceToDestination(u, state)

		if !stationary && effective > 0 {
			result.ETAToNextStation = durationFor(result.DistanceToNextStation, effective)
			result.ETAToDestination = durationFor(result.DistanceToDestination, effective/destinationSlowdownFactor)
		}
	}

	result.Status = e.statusLabel(state, effective, stationary)
	e.last = result
	return result
}

// effectiveSpeed blends current and average speed for projection. With too
// few samples or a stalled average it falls back to the current sample; at
// or below the stationary threshold no speed is usable.
func (e *ETAEngine) effectiveSpeed(current, average float64) (float64, bool) {
	if e.smoother.Len() >= minAverageSamples && average > stationaryThreshold {
		return currentSpeedWeight*current + (1-currentSpeedWeight)*average, false
	}
	if current > stationaryThreshold {
		return current, false
	}
	return 0, true
}

func (e *ETAEngine) distanceToNext(u LocationUpdate, state *ProgressionState) float64 {
	if state.NextStation == nil {
		return 0
	}
	return geo.Distance(u.Lat, u.Lon, state.NextStation.Lat, state.NextStation.Lon)
}

// distanceToDestination sums the leg to the first pending station and the
// inter-station legs through the remaining pending stations. With nothing
// pending it is the direct distance to the destination.
func (e *ETAEngine) distanceToDestination(u LocationUpdate, state *ProgressionState) float64 {
	var pending []int
	for i := range state.Records {
		status := state.Records[i].Status
		if status == StatusUpcoming || status == StatusApproaching {
			pending = append(pending, i)
		}
	}

	if len(pending) == 0 {
		return geo.Distance(u.Lat, u.Lon, state.Destination.Lat, state.Destination.Lon)
	}

	first := state.Records[pending[0]].Station
	total := geo.Distance(u.Lat, u.Lon, first.Lat, first.Lon)
	for i := 1; i < len(pending); i++ {
		prev := state.Records[pending[i-1]].Station
		curr := state.Records[pending[i]].Station
		total += geo.Distance(prev.Lat, prev.Lon, curr.Lat, curr.Lon)
	}
	return total
}

func (e *ETAEngine) statusLabel(state *ProgressionState, effective float64, stationary bool) string {
	if state != nil && state.HasArrived {
		return StatusLabelArrived
	}
	if stationary {
		if e.smoother.Len() < minAverageSamples {
			return StatusLabelGathering
		}
		return StatusLabelStopped
	}
	switch {
	case effective < slowTrafficThreshold:
		return StatusLabelSlow
	case effective > goodTrafficThreshold:
		return StatusLabelGood
	default:
		return StatusLabelNormal
	}
}

func durationFor(distance, speed float64) *time.Duration {
	if speed <= 0 {
		return nil
	}
	d := time.Duration(distance / speed * float64(time.Second))
	return &d
}
