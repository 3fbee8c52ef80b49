package restapi

import (
	"net/http"

	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/models"
)

// stationsHandler lists the stations of the line. An optional direction
// query parameter orders them in travel order for that direction.
func (api *RestAPI) stationsHandler(w http.ResponseWriter, r *http.Request) {
	direction := catalog.Direction(r.URL.Query().Get("direction"))

	var stations []catalog.Station
	if direction != "" {
		if !direction.IsValid() {
			api.validationErrorResponse(w, r, map[string][]string{
				"direction": {"direction must be northbound or southbound"},
			})
			return
		}
		stations = api.Catalog.OrderedBy(direction)
	} else {
		stations = api.Catalog.Stations()
	}

	list := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		list = append(list, models.NewStation(st))
	}
	api.sendResponse(w, r, models.NewListResponse(list))
}
