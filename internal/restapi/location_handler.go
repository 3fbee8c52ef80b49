package restapi

import (
	"encoding/json"
	"net/http"
	"time"

	"linetracker.onebusaway.org/internal/models"
	"linetracker.onebusaway.org/internal/tracking"
	"linetracker.onebusaway.org/internal/utils"
)

// locationRequest is the POST body for one raw position fix. Speed is
// optional; when absent the tracker derives it from successive fixes.
// Timestamp is epoch milliseconds; zero means "now".
type locationRequest struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Speed     *float64 `json:"speed"`
	Accuracy  float64  `json:"accuracy"`
	Timestamp int64    `json:"timestamp"`
}

func (api *RestAPI) locationHandler(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}

	fieldErrors := make(map[string][]string)
	if err := utils.ValidateLatitude(req.Lat); err != nil {
		fieldErrors["lat"] = append(fieldErrors["lat"], err.Error())
	}
	if err := utils.ValidateLongitude(req.Lon); err != nil {
		fieldErrors["lon"] = append(fieldErrors["lon"], err.Error())
	}
	if err := utils.ValidateAccuracy(req.Accuracy); err != nil {
		fieldErrors["accuracy"] = append(fieldErrors["accuracy"], err.Error())
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	fix := tracking.RawFix{
		Lat:      req.Lat,
		Lon:      req.Lon,
		Speed:    -1,
		Accuracy: req.Accuracy,
	}
	if req.Speed != nil {
		fix.Speed = *req.Speed
	}
	if req.Timestamp > 0 {
		fix.Timestamp = time.UnixMilli(req.Timestamp)
	} else {
		fix.Timestamp = time.Now()
	}

	update, ok := api.Service.ProcessFix(fix)
	if !ok {
		api.sendConflict(w, r, "tracking is not active")
		return
	}

	entry := map[string]interface{}{
		"lat":           update.Lat,
		"lon":           update.Lon,
		"rawSpeed":      update.RawSpeed,
		"smoothedSpeed": update.SmoothedSpeed,
		"accuracy":      update.Accuracy,
		"timestamp":     update.Timestamp.UnixMilli(),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}
