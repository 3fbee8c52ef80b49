package restapi

import (
	"net/http"

	"linetracker.onebusaway.org/internal/models"
)

func (api *RestAPI) alertsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Service.Snapshot()
	api.sendResponse(w, r, models.NewListResponse(models.NewAlertEvents(snapshot.Alerts)))
}
