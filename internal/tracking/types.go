package tracking

import (
	"time"

	"linetracker.onebusaway.org/internal/catalog"
)

// RawFix is a position sample as delivered by a device or feed. Speed may be
// negative when the source does not report it; the tracker derives it from
// successive fixes in that case.
type RawFix struct {
	Lat       float64
	Lon       float64
	Speed     float64
	Accuracy  float64
	Timestamp time.Time
}

// LocationUpdate is a normalized position sample. It is produced by the
// LocationTracker at device sampling cadence and consumed immediately by all
// subscribers; it is never persisted.
type LocationUpdate struct {
	Lat           float64
	Lon           float64
	RawSpeed      float64
	SmoothedSpeed float64
	Accuracy      float64
	Timestamp     time.Time
}

// StationStatus describes where one station stands in the active journey.
type StationStatus string

const (
	StatusUpcoming    StationStatus = "upcoming"
	StatusApproaching StationStatus = "approaching"
	StatusAtStation   StationStatus = "atStation"
	StatusPassed      StationStatus = "passed"
	StatusSkipped     StationStatus = "skipped"
)

// Resolved reports whether the station is behind the vehicle.
func (s StationStatus) Resolved() bool {
	return s == StatusPassed || s == StatusSkipped
}

// StationPassRecord tracks one station of the active journey. Records are
// created at journey initialization and mutated in place on every location
// update.
type StationPassRecord struct {
	Station         catalog.Station
	Status          StationStatus
	EnteredAt       *time.Time
	ExitedAt        *time.Time
	MinDistanceSeen float64
}

// ProgressionState is the aggregate journey state owned by the
// StationProgressionEngine.
type ProgressionState struct {
	Records        []StationPassRecord
	Direction      catalog.Direction
	Destination    catalog.Station
	CurrentStation *catalog.Station
	NextStation    *catalog.Station
	PassedCount    int
	RemainingCount int
	HasArrived     bool
}

// Clone returns a deep copy safe to hand to readers while the engine keeps
// mutating the original.
func (s *ProgressionState) Clone() *ProgressionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Records = make([]StationPassRecord, len(s.Records))
	copy(out.Records, s.Records)
	if s.CurrentStation != nil {
		cur := *s.CurrentStation
		out.CurrentStation = &cur
	}
	if s.NextStation != nil {
		next := *s.NextStation
		out.NextStation = &next
	}
	return &out
}

// InferenceResult is the outcome of one direction-inference pass. Direction
// is empty when the engine cannot decide.
type InferenceResult struct {
	Direction      catalog.Direction
	Confidence     float64
	Bearing        float64
	Reasoning      string
	ShouldOverride bool
}

// IsConfident reports whether the result is strong enough to contradict the
// active direction.
func (r InferenceResult) IsConfident() bool {
	return r.Direction != "" && r.Confidence >= confidentThreshold
}

// ETAResult carries the latest distance and time estimates. The zero value
// means "no estimate yet".
type ETAResult struct {
	DistanceToNextStation float64
	DistanceToDestination float64
	ETAToNextStation      *time.Duration
	ETAToDestination      *time.Duration
	CurrentSpeed          float64
	AverageSpeed          float64
	IsStationary          bool
	Status                string
}

// WarningType keys the at-most-one-active-warning-per-type rule.
type WarningType string

const (
	WarningGPSWeakSignal  WarningType = "gpsWeakSignal"
	WarningGPSLost        WarningType = "gpsLost"
	WarningLowSpeed       WarningType = "lowSpeed"
	WarningStationary     WarningType = "stationary"
	WarningWrongDirection WarningType = "wrongDirection"
	WarningOffRoute       WarningType = "offRoute"
)

// Severity ranks a warning for display purposes.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Warning is a user-facing edge-case notice. A new warning of the same type
// replaces the previous one.
type Warning struct {
	Type          WarningType
	Severity      Severity
	Title         string
	Message       string
	Timestamp     time.Time
	IsDismissible bool
}

// AlertKind distinguishes proximity alerts from the final arrival alert.
type AlertKind string

const (
	AlertProximity AlertKind = "proximity"
	AlertArrival   AlertKind = "arrival"
)

// Alert is the payload handed to the notification transport. Delivery is
// fire-and-forget; the engine only decides when to fire.
type Alert struct {
	Kind         AlertKind
	StationName  string
	StationsAway int
	ETA          string
	Timestamp    time.Time
}
