package restapi

import (
	"encoding/json"
	"net/http"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/models"
)

func (api *RestAPI) directionHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Service.Snapshot()
	entry := models.NewDirectionStatus(
		string(snapshot.ActiveDirection),
		snapshot.AutoDirection,
		snapshot.Direction,
	)
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// directionRequest selects a manual direction or hands control back to
// inference. Exactly one of the two fields applies; a direction wins when
// both are set.
type directionRequest struct {
	Direction string `json:"direction"`
	Auto      bool   `json:"auto"`
}

func (api *RestAPI) setDirectionHandler(w http.ResponseWriter, r *http.Request) {
	var req directionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}

	switch {
	case req.Direction != "":
		if err := api.Service.SetManualDirection(catalog.Direction(req.Direction)); err != nil {
			api.validationErrorResponse(w, r, map[string][]string{
				"direction": {err.Error()},
			})
			return
		}
	case req.Auto:
		api.Service.EnableAutoDirection()
	default:
		api.validationErrorResponse(w, r, map[string][]string{
			"direction": {"direction or auto is required"},
		})
		return
	}

	api.directionHandler(w, r)
}
