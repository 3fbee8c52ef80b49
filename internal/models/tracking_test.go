package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/tracking"
)

func TestNewProgression(t *testing.T) {
	entered := time.UnixMilli(1746324484000)
	exited := time.UnixMilli(1746324544000)
	current := catalog.Station{ID: "b-st", Name: "Station B"}
	next := catalog.Station{ID: "c-st", Name: "Station C"}

	state := &tracking.ProgressionState{
		Direction:      catalog.Northbound,
		Destination:    catalog.Station{ID: "c-st", Name: "Station C"},
		CurrentStation: &current,
		NextStation:    &next,
		PassedCount:    1,
		RemainingCount: 2,
		Records: []tracking.StationPassRecord{
			{
				Station:   catalog.Station{ID: "a-st", Name: "Station A"},
				Status:    tracking.StatusPassed,
				EnteredAt: &entered,
				ExitedAt:  &exited,
			},
			{
				Station: catalog.Station{ID: "b-st", Name: "Station B"},
				Status:  tracking.StatusAtStation,
			},
			{
				Station: catalog.Station{ID: "c-st", Name: "Station C"},
				Status:  tracking.StatusUpcoming,
			},
		},
	}

	p := NewProgression(state, "encoded-line")

	assert.Equal(t, "northbound", p.Direction)
	assert.Equal(t, "c-st", p.DestinationID)
	assert.Equal(t, "b-st", p.CurrentStationID)
	assert.Equal(t, "c-st", p.NextStationID)
	assert.Equal(t, 1, p.PassedCount)
	assert.Equal(t, 2, p.RemainingCount)
	assert.Equal(t, "encoded-line", p.RemainingPolyline)

	require.Len(t, p.Stations, 3)
	assert.Equal(t, "passed", p.Stations[0].Status)
	assert.Equal(t, int64(1746324484000), p.Stations[0].EnteredAt)
	assert.Equal(t, int64(1746324544000), p.Stations[0].ExitedAt)
	assert.Zero(t, p.Stations[1].EnteredAt, "EnteredAt should be omitted when unknown")
}

func TestNewETA(t *testing.T) {
	next := 45 * time.Second
	dest := 6 * time.Minute

	eta := NewETA(tracking.ETAResult{
		DistanceToNextStation: 420,
		DistanceToDestination: 3100,
		ETAToNextStation:      &next,
		ETAToDestination:      &dest,
		CurrentSpeed:          9.5,
		AverageSpeed:          10.2,
		Status:                "Normal traffic",
	})

	require.NotNil(t, eta.ETAToNextStation)
	assert.Equal(t, 45.0, *eta.ETAToNextStation)
	require.NotNil(t, eta.ETAToDestination)
	assert.Equal(t, 360.0, *eta.ETAToDestination)
	assert.Equal(t, "Normal traffic", eta.Status)
}

func TestNewETAOmitsMissingEstimates(t *testing.T) {
	eta := NewETA(tracking.ETAResult{IsStationary: true, Status: "Vehicle stopped"})

	assert.Nil(t, eta.ETAToNextStation)
	assert.Nil(t, eta.ETAToDestination)
	assert.True(t, eta.IsStationary)
}

func TestNewWarnings(t *testing.T) {
	at := time.UnixMilli(1746324484528)
	warnings := NewWarnings([]tracking.Warning{
		{
			Type:          tracking.WarningGPSLost,
			Severity:      tracking.SeverityCritical,
			Title:         "GPS signal lost",
			Message:       "No position fix for 35 seconds.",
			Timestamp:     at,
			IsDismissible: false,
		},
	})

	require.Len(t, warnings, 1)
	assert.Equal(t, "gpsLost", warnings[0].Type)
	assert.Equal(t, "critical", warnings[0].Severity)
	assert.Equal(t, int64(1746324484528), warnings[0].Timestamp)
	assert.False(t, warnings[0].IsDismissible)
}

func TestNewAlertEvents(t *testing.T) {
	at := time.UnixMilli(1746324484528)
	events := NewAlertEvents([]tracking.Alert{
		{Kind: tracking.AlertProximity, StationName: "Station C", StationsAway: 2, ETA: "about 6 minutes", Timestamp: at},
		{Kind: tracking.AlertArrival, StationName: "Station C", Timestamp: at},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "proximity", events[0].Kind)
	assert.Equal(t, 2, events[0].StationsAway)
	assert.Equal(t, "arrival", events[1].Kind)
	assert.Zero(t, events[1].StationsAway)
}
