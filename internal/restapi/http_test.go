package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"linetracker.onebusaway.org/internal/app"
	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/models"
	"linetracker.onebusaway.org/internal/tracking"
)

const testLat = 47.0
const testLon = -122.30
const metersPerLatDegree = 111194.9

// testCatalog builds a three-station north-south line with 1km spacing.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	ids := []string{"a-st", "b-st", "c-st"}
	names := []string{"Station A", "Station B", "Station C"}
	stations := make([]catalog.Station, len(ids))
	for i := range ids {
		stations[i] = catalog.Station{
			ID:         ids[i],
			Name:       names[i],
			Lat:        testLat + float64(i)*1000/metersPerLatDegree,
			Lon:        testLon,
			NorthOrder: i + 1,
			SouthOrder: len(ids) - i,
			IsTerminal: i == 0 || i == len(ids)-1,
		}
	}

	c, err := catalog.NewCatalog(stations)
	require.NoError(t, err)
	return c
}

// createTestApi creates a RestAPI with a running tracking service for use in tests.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := testCatalog(t)
	service := tracking.NewService(logger, cat, tracking.NewChannelSource(), nil)
	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(service.Stop)

	application := &app.Application{
		Config: app.Config{
			Env:       "test",
			ApiKeys:   []string{"TEST"},
			RateLimit: -1,
		},
		Logger:  logger,
		Catalog: cat,
		Service: service,
	}

	return NewRestAPI(application)
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()

	router := httprouter.New()
	api.SetRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func getEndpoint(t *testing.T, server *httptest.Server, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

func postJSON(t *testing.T, server *httptest.Server, endpoint string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(server.URL+endpoint, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	defer resp.Body.Close() // nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func postEndpoint(t *testing.T, server *httptest.Server, endpoint string, body interface{}) (*http.Response, models.ResponseModel) {
	t.Helper()

	resp, raw := postJSON(t, server, endpoint, body)
	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(raw, &response))
	return resp, response
}

// dataMap digs the data envelope out of a decoded response.
func dataMap(t *testing.T, response models.ResponseModel) map[string]interface{} {
	t.Helper()

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok, "response data should be a map")
	return data
}

func entryMap(t *testing.T, response models.ResponseModel) map[string]interface{} {
	t.Helper()

	entry, ok := dataMap(t, response)["entry"].(map[string]interface{})
	require.True(t, ok, "response entry should be a map")
	return entry
}

func listSlice(t *testing.T, response models.ResponseModel) []interface{} {
	t.Helper()

	list, ok := dataMap(t, response)["list"].([]interface{})
	require.True(t, ok, "response list should be a slice")
	return list
}

// latMeters returns a latitude the given meters north of the first station.
func latMeters(meters float64) float64 {
	return testLat + meters/metersPerLatDegree
}
