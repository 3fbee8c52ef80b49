package restapi

import (
	"encoding/json"
	"net/http"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/models"
	"linetracker.onebusaway.org/internal/utils"
)

// journeyRequest is the POST body for starting a journey. Direction is
// optional; when empty the active (possibly inferred) direction is used.
// AlertThreshold zero keeps the current setting.
type journeyRequest struct {
	DestinationID  string `json:"destinationId"`
	Direction      string `json:"direction"`
	AlertThreshold int    `json:"alertThreshold"`
}

func (api *RestAPI) startJourneyHandler(w http.ResponseWriter, r *http.Request) {
	var req journeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}

	if err := utils.ValidateID(req.DestinationID); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"destinationId": {err.Error()},
		})
		return
	}
	if _, ok := api.Catalog.Get(req.DestinationID); !ok {
		api.sendNotFound(w, r)
		return
	}

	err := api.Service.StartJourney(catalog.Direction(req.Direction), req.DestinationID, req.AlertThreshold)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"journey": {err.Error()},
		})
		return
	}

	snapshot := api.Service.Snapshot()
	entry := models.NewProgression(snapshot.Progression, encodeRemainingPolyline(snapshot))
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) resetJourneyHandler(w http.ResponseWriter, r *http.Request) {
	api.Service.ResetJourney()
	api.sendResponse(w, r, models.NewOKResponse(nil))
}
