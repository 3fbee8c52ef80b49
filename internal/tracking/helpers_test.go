package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linetracker.onebusaway.org/internal/catalog"
)

// metersPerLatDegree is close enough for the sub-kilometer offsets used in
// these tests.
const metersPerLatDegree = 111194.9

const testLon = -122.30

// testLineCatalog builds a straight north-south line with stations spaced
// spacingMeters apart, northbound order running south to north.
func testLineCatalog(t *testing.T, count int, spacingMeters float64) *catalog.Catalog {
	t.Helper()

	baseLat := 47.0
	stations := make([]catalog.Station, count)
	for i := 0; i < count; i++ {
		stations[i] = catalog.Station{
			ID:         stationID(i),
			Name:       stationName(i),
			Lat:        baseLat + float64(i)*spacingMeters/metersPerLatDegree,
			Lon:        testLon,
			NorthOrder: i + 1,
			SouthOrder: count - i,
			IsTerminal: i == 0 || i == count-1,
		}
	}

	c, err := catalog.NewCatalog(stations)
	require.NoError(t, err)
	return c
}

func stationID(i int) string {
	return string(rune('a'+i)) + "-st"
}

func stationName(i int) string {
	return "Station " + string(rune('A'+i))
}

// latOffset returns the latitude meters north of the line's first station.
func latOffset(meters float64) float64 {
	return 47.0 + meters/metersPerLatDegree
}

func updateAt(lat, lon, speed float64, at time.Time) LocationUpdate {
	return LocationUpdate{
		Lat:           lat,
		Lon:           lon,
		RawSpeed:      speed,
		SmoothedSpeed: speed,
		Accuracy:      5,
		Timestamp:     at,
	}
}
