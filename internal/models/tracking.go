package models

import (
	"time"

	"linetracker.onebusaway.org/internal/tracking"
)

// StationPass is the per-station progression entry.
type StationPass struct {
	StationID string `json:"stationId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	EnteredAt int64  `json:"enteredAt,omitempty"`
	ExitedAt  int64  `json:"exitedAt,omitempty"`
}

// Progression is the API shape of the active journey state.
type Progression struct {
	Direction        string        `json:"direction"`
	DestinationID    string        `json:"destinationId"`
	CurrentStationID string        `json:"currentStationId,omitempty"`
	NextStationID    string        `json:"nextStationId,omitempty"`
	PassedCount      int           `json:"passedCount"`
	RemainingCount   int           `json:"remainingCount"`
	HasArrived       bool          `json:"hasArrived"`
	Stations         []StationPass `json:"stations"`
	// RemainingPolyline encodes the geometry through the still-pending
	// stations, for drawing the rest of the route.
	RemainingPolyline string `json:"remainingPolyline,omitempty"`
}

// NewProgression maps journey state to its API shape. remainingPolyline is
// computed by the caller, which owns the geometry encoding.
func NewProgression(state *tracking.ProgressionState, remainingPolyline string) Progression {
	p := Progression{
		Direction:         string(state.Direction),
		DestinationID:     state.Destination.ID,
		PassedCount:       state.PassedCount,
		RemainingCount:    state.RemainingCount,
		HasArrived:        state.HasArrived,
		Stations:          make([]StationPass, 0, len(state.Records)),
		RemainingPolyline: remainingPolyline,
	}
	if state.CurrentStation != nil {
		p.CurrentStationID = state.CurrentStation.ID
	}
	if state.NextStation != nil {
		p.NextStationID = state.NextStation.ID
	}

	for _, rec := range state.Records {
		entry := StationPass{
			StationID: rec.Station.ID,
			Name:      rec.Station.Name,
			Status:    string(rec.Status),
		}
		if rec.EnteredAt != nil {
			entry.EnteredAt = toMillis(*rec.EnteredAt)
		}
		if rec.ExitedAt != nil {
			entry.ExitedAt = toMillis(*rec.ExitedAt)
		}
		p.Stations = append(p.Stations, entry)
	}
	return p
}

// ETA is the API shape of the latest time and distance estimates. Durations
// are in seconds; nil estimates are omitted.
type ETA struct {
	DistanceToNextStation float64  `json:"distanceToNextStation"`
	DistanceToDestination float64  `json:"distanceToDestination"`
	ETAToNextStation      *float64 `json:"etaToNextStationSeconds,omitempty"`
	ETAToDestination      *float64 `json:"etaToDestinationSeconds,omitempty"`
	CurrentSpeed          float64  `json:"currentSpeed"`
	AverageSpeed          float64  `json:"averageSpeed"`
	IsStationary          bool     `json:"isStationary"`
	Status                string   `json:"status"`
}

// NewETA maps an ETA result to its API shape.
func NewETA(result tracking.ETAResult) ETA {
	return ETA{
		DistanceToNextStation: result.DistanceToNextStation,
		DistanceToDestination: result.DistanceToDestination,
		ETAToNextStation:      toSeconds(result.ETAToNextStation),
		ETAToDestination:      toSeconds(result.ETAToDestination),
		CurrentSpeed:          result.CurrentSpeed,
		AverageSpeed:          result.AverageSpeed,
		IsStationary:          result.IsStationary,
		Status:                result.Status,
	}
}

// DirectionStatus reports the active direction and the latest inference.
type DirectionStatus struct {
	Active      string  `json:"active,omitempty"`
	AutoEnabled bool    `json:"autoEnabled"`
	Inferred    string  `json:"inferred,omitempty"`
	Confidence  float64 `json:"confidence"`
	Bearing     float64 `json:"bearing"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// NewDirectionStatus maps the direction state to its API shape.
func NewDirectionStatus(active string, autoEnabled bool, result tracking.InferenceResult) DirectionStatus {
	return DirectionStatus{
		Active:      active,
		AutoEnabled: autoEnabled,
		Inferred:    string(result.Direction),
		Confidence:  result.Confidence,
		Bearing:     result.Bearing,
		Reasoning:   result.Reasoning,
	}
}

// WarningModel is the API shape of one active warning.
type WarningModel struct {
	Type          string `json:"type"`
	Severity      string `json:"severity"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Timestamp     int64  `json:"timestamp"`
	IsDismissible bool   `json:"isDismissible"`
}

// NewWarnings maps active warnings to their API shapes.
func NewWarnings(warnings []tracking.Warning) []WarningModel {
	out := make([]WarningModel, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, WarningModel{
			Type:          string(w.Type),
			Severity:      string(w.Severity),
			Title:         w.Title,
			Message:       w.Message,
			Timestamp:     toMillis(w.Timestamp),
			IsDismissible: w.IsDismissible,
		})
	}
	return out
}

// AlertEvent is the API shape of one fired notification.
type AlertEvent struct {
	Kind         string `json:"kind"`
	StationName  string `json:"stationName"`
	StationsAway int    `json:"stationsAway,omitempty"`
	ETA          string `json:"eta,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// NewAlertEvents maps fired alerts to their API shapes.
func NewAlertEvents(alerts []tracking.Alert) []AlertEvent {
	out := make([]AlertEvent, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertEvent{
			Kind:         string(a.Kind),
			StationName:  a.StationName,
			StationsAway: a.StationsAway,
			ETA:          a.ETA,
			Timestamp:    toMillis(a.Timestamp),
		})
	}
	return out
}

func toMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

func toSeconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}
