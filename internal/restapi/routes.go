package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	api.handle(router, http.MethodGet, "/api/tracker/current-time.json", api.currentTimeHandler)
	api.handle(router, http.MethodGet, "/api/tracker/stations.json", api.stationsHandler)
	api.handle(router, http.MethodPost, "/api/tracker/location.json", api.locationHandler)
	api.handle(router, http.MethodPost, "/api/tracker/journey.json", api.startJourneyHandler)
	api.handle(router, http.MethodPost, "/api/tracker/journey/reset.json", api.resetJourneyHandler)
	api.handle(router, http.MethodPost, "/api/tracker/stations/:id/mark-passed.json", api.markStationPassedHandler)
	api.handle(router, http.MethodGet, "/api/tracker/progression.json", api.progressionHandler)
	api.handle(router, http.MethodGet, "/api/tracker/eta.json", api.etaHandler)
	api.handle(router, http.MethodGet, "/api/tracker/direction.json", api.directionHandler)
	api.handle(router, http.MethodPost, "/api/tracker/direction.json", api.setDirectionHandler)
	api.handle(router, http.MethodGet, "/api/tracker/warnings.json", api.warningsHandler)
	api.handle(router, http.MethodPost, "/api/tracker/warnings/:type/dismiss.json", api.dismissWarningHandler)
	api.handle(router, http.MethodGet, "/api/tracker/alerts.json", api.alertsHandler)
}

func (api *RestAPI) handle(router *httprouter.Router, method, path string, handler handlerFunc) {
	router.Handler(method, path, api.rateLimiter(validateAPIKey(api, handler)))
}
