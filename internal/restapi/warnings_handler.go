package restapi

import (
	"net/http"

	"linetracker.onebusaway.org/internal/models"
	"linetracker.onebusaway.org/internal/tracking"
	"linetracker.onebusaway.org/internal/utils"
)

func (api *RestAPI) warningsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Service.Snapshot()
	api.sendResponse(w, r, models.NewListResponse(models.NewWarnings(snapshot.Warnings)))
}

func (api *RestAPI) dismissWarningHandler(w http.ResponseWriter, r *http.Request) {
	warningType := utils.ExtractIDFromParams(r, "type")
	if err := utils.ValidateID(warningType); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"type": {err.Error()},
		})
		return
	}

	if !api.Service.DismissWarning(tracking.WarningType(warningType)) {
		api.sendNotFound(w, r)
		return
	}

	snapshot := api.Service.Snapshot()
	api.sendResponse(w, r, models.NewListResponse(models.NewWarnings(snapshot.Warnings)))
}
