package restapi

import (
	"net/http"

	"github.com/twpayne/go-polyline"

	"linetracker.onebusaway.org/internal/models"
	"linetracker.onebusaway.org/internal/tracking"
	"linetracker.onebusaway.org/internal/utils"
)

func (api *RestAPI) progressionHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Service.Snapshot()
	if snapshot.Progression == nil {
		api.sendNotFound(w, r)
		return
	}

	entry := models.NewProgression(snapshot.Progression, encodeRemainingPolyline(snapshot))
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) markStationPassedHandler(w http.ResponseWriter, r *http.Request) {
	stationID := utils.ExtractIDFromParams(r, "id")
	if err := utils.ValidateID(stationID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {err.Error()},
		})
		return
	}

	if err := api.Service.MarkStationPassed(stationID); err != nil {
		api.sendNotFound(w, r)
		return
	}

	snapshot := api.Service.Snapshot()
	entry := models.NewProgression(snapshot.Progression, encodeRemainingPolyline(snapshot))
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// encodeRemainingPolyline encodes the path through the still-pending
// stations, starting from the vehicle's last known position when there is
// one. An arrived or empty journey yields no geometry.
func encodeRemainingPolyline(snapshot tracking.Snapshot) string {
	state := snapshot.Progression
	if state == nil || state.HasArrived {
		return ""
	}

	var coords [][]float64
	if snapshot.LastUpdate != nil {
		coords = append(coords, []float64{snapshot.LastUpdate.Lat, snapshot.LastUpdate.Lon})
	}
	for _, rec := range state.Records {
		if rec.Status == tracking.StatusUpcoming || rec.Status == tracking.StatusApproaching {
			coords = append(coords, []float64{rec.Station.Lat, rec.Station.Lon})
		}
	}

	if len(coords) < 2 {
		return ""
	}
	return string(polyline.EncodeCoords(coords))
}
