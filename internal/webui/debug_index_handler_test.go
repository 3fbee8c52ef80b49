package webui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linetracker.onebusaway.org/internal/app"
	"linetracker.onebusaway.org/internal/catalog"
	"linetracker.onebusaway.org/internal/tracking"
)

func newTestWebUI(t *testing.T) *WebUI {
	t.Helper()

	stations := []catalog.Station{
		{ID: "a-st", Name: "Station A", Lat: 47.0, Lon: -122.30, NorthOrder: 1, SouthOrder: 2, IsTerminal: true},
		{ID: "b-st", Name: "Station B", Lat: 47.01, Lon: -122.30, NorthOrder: 2, SouthOrder: 1, IsTerminal: true},
	}
	cat, err := catalog.NewCatalog(stations)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := tracking.NewService(logger, cat, tracking.NewChannelSource(), nil)
	require.NoError(t, service.Start(context.Background()))
	t.Cleanup(service.Stop)

	return NewWebUI(&app.Application{
		Config: app.Config{
			Env:     "test",
			ApiKeys: []string{"SECRET"},
		},
		Logger:  logger,
		Catalog: cat,
		Service: service,
	})
}

func serveDebug(t *testing.T, webUI *WebUI, target string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	webUI.SetWebUIRoutes(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestDebugIndexStations(t *testing.T) {
	rr := serveDebug(t, newTestWebUI(t), "/debug/?dataType=stations")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Catalog - Stations")
	assert.Contains(t, rr.Body.String(), "Station A")
}

func TestDebugIndexSnapshot(t *testing.T) {
	rr := serveDebug(t, newTestWebUI(t), "/debug/?dataType=snapshot")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Tracking - Full Snapshot")
}

func TestDebugIndexRedactsAPIKeys(t *testing.T) {
	rr := serveDebug(t, newTestWebUI(t), "/debug/?dataType=config")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "SECRET")
}

func TestDebugIndexUnknownDataType(t *testing.T) {
	rr := serveDebug(t, newTestWebUI(t), "/debug/?dataType=bogus")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Choose a data type")
}
