package catalog

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/jamespfennell/gtfs"
)

// ImportGTFS builds a catalog from a static GTFS feed. The source can be
// either a URL or a local file path to a GTFS zip; routeID selects the line
// whose stop sequence defines the station ordering.
//
// The longest trip in each GTFS direction supplies the ordering: direction 0
// becomes the northbound ranks, direction 1 the southbound ranks. If the feed
// only describes one direction, the southbound ranks are the northbound ones
// reversed.
func ImportGTFS(source, routeID string) (*Catalog, error) {
	isLocalFile := !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://")

	b, err := rawFeedData(source, isLocalFile)
	if err != nil {
		return nil, err
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	return fromStatic(staticData, routeID)
}

func rawFeedData(source string, isLocalFile bool) ([]byte, error) {
	var b []byte
	var err error

	if isLocalFile {
		b, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
	} else {
		resp, err := http.Get(source)
		if err != nil {
			return nil, fmt.Errorf("error downloading GTFS data: %w", err)
		}
		defer resp.Body.Close() // nolint

		b, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading GTFS data: %w", err)
		}
	}
	return b, nil
}

func fromStatic(staticData *gtfs.Static, routeID string) (*Catalog, error) {
	northTrip := longestTripForDirection(staticData, routeID, 0)
	southTrip := longestTripForDirection(staticData, routeID, 1)

	if northTrip == nil && southTrip == nil {
		return nil, fmt.Errorf("no trips found for route %q", routeID)
	}
	if northTrip == nil {
		northTrip = southTrip
		southTrip = nil
	}

	southOrders := make(map[string]int)
	if southTrip != nil {
		for i, st := range southTrip.StopTimes {
			southOrders[st.Stop.Id] = i + 1
		}
	}

	var stations []Station
	total := len(northTrip.StopTimes)
	for i, st := range northTrip.StopTimes {
		stop := st.Stop
		if stop == nil || stop.Latitude == nil || stop.Longitude == nil {
			continue
		}

		southOrder, ok := southOrders[stop.Id]
		if !ok {
			// One-directional feed: reverse the northbound ranks.
			southOrder = total - i
		}

		stations = append(stations, Station{
			ID:         stop.Id,
			Name:       stop.Name,
			Lat:        *stop.Latitude,
			Lon:        *stop.Longitude,
			NorthOrder: i + 1,
			SouthOrder: southOrder,
			IsTerminal: i == 0 || i == total-1,
			Landmark:   stop.Description,
		})
	}

	return NewCatalog(stations)
}

func longestTripForDirection(staticData *gtfs.Static, routeID string, direction int64) *gtfs.ScheduledTrip {
	var best *gtfs.ScheduledTrip
	for i := range staticData.Trips {
		t := &staticData.Trips[i]
		if t.Route == nil || t.Route.Id != routeID {
			continue
		}
		if int64(t.DirectionId) != direction {
			continue
		}
		if best == nil || len(t.StopTimes) > len(best.StopTimes) {
			best = t
		}
	}
	return best
}
