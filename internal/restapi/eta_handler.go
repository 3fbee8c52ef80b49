package restapi

import (
	"net/http"

	"linetracker.onebusaway.org/internal/models"
)

func (api *RestAPI) etaHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Service.Snapshot()
	api.sendResponse(w, r, models.NewEntryResponse(models.NewETA(snapshot.ETA)))
}
