package tracking

import (
	"fmt"
	"math"
	"time"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/geo"
)

const (
	// stationRadius is the distance below which the vehicle is at a station.
	stationRadius = 100.0
	// approachRadius is the distance below which a station is approaching.
	approachRadius = 300.0
	// exitRadius is the hysteresis buffer distinguishing a genuine visit
	// from pass-through noise.
	exitRadius = 150.0
	// maxMissedStations is the largest contiguous gap healed as skipped.
	maxMissedStations = 2
)

// StationProgressionEngine decides arrival, passing, and skipping for every
// station of the active journey. All methods mutate the given state in place
// and must be called from a single writer.
type StationProgressionEngine struct{}

// NewStationProgressionEngine creates the engine. It carries no per-journey
// state of its own.
func NewStationProgressionEngine() *StationProgressionEngine {
	return &StationProgressionEngine{}
}

// InitializeJourney creates fresh journey state: one upcoming record per
// station from the route start up to and including the destination, in
// direction order.
func (e *StationProgressionEngine) InitializeJourney(c *catalog.Catalog, direction catalog.Direction, destinationID string) (*ProgressionState, error) {
	if !direction.IsValid() {
		return nil, fmt.Errorf("invalid direction %q", direction)
	}
	destination, ok := c.Get(destinationID)
	if !ok {
		return nil, fmt.Errorf("unknown destination station %q", destinationID)
	}

	ordered := c.OrderedBy(direction)

	var records []StationPassRecord
	for _, st := range ordered {
		records = append(records, StationPassRecord{
			Station:         st,
			Status:          StatusUpcoming,
			MinDistanceSeen: math.MaxFloat64,
		})
		if st.ID == destination.ID {
			break
		}
	}

	state := &ProgressionState{
		Records:        records,
		Direction:      direction,
		Destination:    destination,
		RemainingCount: len(records),
	}
	next := records[0].Station
	state.NextStation = &next
	return state, nil
}

// UpdateProgression processes one location fix against the journey state.
// It is idempotent under repeated identical input and monotonic in stations
// passed under normal forward travel. Once the destination is reached the
// state is frozen until reset.
func (e *StationProgressionEngine) UpdateProgression(state *ProgressionState, lat, lon float64, now time.Time) {
	if state == nil || state.HasArrived || len(state.Records) == 0 {
		return
	}

	distances := make([]float64, len(state.Records))
	for i := range state.Records {
		st := state.Records[i].Station
		distances[i] = geo.Distance(lat, lon, st.Lat, st.Lon)
	}

	// First record within the station radius wins; route order favors the
	// earliest station should two ever overlap.
	currentIndex := -1
	for i, d := range distances {
		if d <= stationRadius {
			currentIndex = i
			break
		}
	}

	for i := range state.Records {
		if distances[i] < state.Records[i].MinDistanceSeen {
			state.Records[i].MinDistanceSeen = distances[i]
		}
	}

	for i := range state.Records {
		rec := &state.Records[i]
		d := distances[i]

		switch {
		case currentIndex >= 0 && i < currentIndex:
			// Behind the current station: the exit buffer decides whether
			// this was a genuine visit or a bypass.
			if rec.MinDistanceSeen <= exitRadius {
				e.markPassed(rec, now)
			} else if !rec.Status.Resolved() {
				rec.Status = StatusSkipped
			}

		case d <= stationRadius:
			if rec.Station.ID == state.Destination.ID {
				state.HasArrived = true
			}
			// A record that already resolved stays resolved; jitter around
			// the radius must not resurrect it.
			if !rec.Status.Resolved() && rec.Status != StatusAtStation {
				rec.Status = StatusAtStation
				if rec.EnteredAt == nil {
					entered := now
					rec.EnteredAt = &entered
				}
			}

		case d <= approachRadius:
			switch rec.Status {
			case StatusUpcoming:
				rec.Status = StatusApproaching
			case StatusAtStation:
				// Just left the platform.
				e.markPassed(rec, now)
			}

		default:
			if rec.Status == StatusAtStation || rec.Status == StatusApproaching {
				// The vehicle moved on without lingering in the buffer
				// zone; a later station being close confirms it.
				if laterStationNear(distances, i) {
					e.markPassed(rec, now)
				}
			}
		}
	}

	e.healGaps(state, currentIndex, now)
	e.recompute(state, currentIndex)
}

// MarkStationPassed is an operator override: it forces the given station to
// passed and resolves every earlier record. Unknown IDs fail fast.
func (e *StationProgressionEngine) MarkStationPassed(state *ProgressionState, stationID string) error {
	if state == nil {
		return fmt.Errorf("no active journey")
	}

	target := -1
	for i := range state.Records {
		if state.Records[i].Station.ID == stationID {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("station %q is not part of the active journey", stationID)
	}

	now := time.Now()
	e.markPassed(&state.Records[target], now)
	for i := 0; i < target; i++ {
		rec := &state.Records[i]
		if rec.Status.Resolved() {
			continue
		}
		if rec.MinDistanceSeen <= exitRadius {
			e.markPassed(rec, now)
		} else {
			rec.Status = StatusSkipped
		}
	}

	e.recompute(state, -1)
	return nil
}

func (e *StationProgressionEngine) markPassed(rec *StationPassRecord, now time.Time) {
	if rec.Status == StatusPassed {
		return
	}
	rec.Status = StatusPassed
	if rec.ExitedAt == nil {
		exited := now
		rec.ExitedAt = &exited
	}
}

// healGaps resolves records the vehicle left behind. Runs of unresolved
// records sandwiched between passed ones are treated as skipped when short
// enough; anything else before the current station is settled by the exit
// buffer.
func (e *StationProgressionEngine) healGaps(state *ProgressionState, currentIndex int, now time.Time) {
	if currentIndex < 0 {
		return
	}

	runStart := -1
	lastPassed := -1
	for i := 0; i < currentIndex; i++ {
		rec := &state.Records[i]
		if rec.Status == StatusPassed {
			if runStart >= 0 && lastPassed >= 0 {
				runLen := i - runStart
				if runLen <= maxMissedStations {
					for j := runStart; j < i; j++ {
						if state.Records[j].Status != StatusPassed {
							state.Records[j].Status = StatusSkipped
						}
					}
				}
			}
			runStart = -1
			lastPassed = i
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}

	for i := 0; i < currentIndex; i++ {
		rec := &state.Records[i]
		if rec.Status == StatusUpcoming || rec.Status == StatusApproaching {
			if rec.MinDistanceSeen <= exitRadius {
				e.markPassed(rec, now)
			} else {
				rec.Status = StatusSkipped
			}
		}
	}
}

func (e *StationProgressionEngine) recompute(state *ProgressionState, currentIndex int) {
	state.CurrentStation = nil
	if currentIndex >= 0 {
		cur := state.Records[currentIndex].Station
		state.CurrentStation = &cur
	}

	state.NextStation = nil
	for i := range state.Records {
		status := state.Records[i].Status
		if status == StatusUpcoming || status == StatusApproaching {
			next := state.Records[i].Station
			state.NextStation = &next
			break
		}
	}

	passed := 0
	for i := range state.Records {
		if state.Records[i].Status.Resolved() {
			passed++
		}
	}
	state.PassedCount = passed
	state.RemainingCount = len(state.Records) - passed
}

func laterStationNear(distances []float64, i int) bool {
	for j := i + 1; j < len(distances); j++ {
		if distances[j] <= approachRadius {
			return true
		}
	}
	return false
}
