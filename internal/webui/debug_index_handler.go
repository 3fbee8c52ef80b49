package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"
)

//go:embed debug_index.html
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "debug_index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	snapshot := webUI.Service.Snapshot()

	switch dataType {
	case "stations":
		data = webUI.Catalog.Stations()
		title = "Catalog - Stations"
	case "snapshot":
		data = snapshot
		title = "Tracking - Full Snapshot"
	case "progression":
		data = snapshot.Progression
		title = "Tracking - Station Progression"
	case "direction":
		data = snapshot.Direction
		title = "Tracking - Direction Inference"
	case "eta":
		data = snapshot.ETA
		title = "Tracking - ETA"
	case "warnings":
		data = snapshot.Warnings
		title = "Tracking - Active Warnings"
	case "alerts":
		data = snapshot.Alerts
		title = "Tracking - Alert History"
	case "last_update":
		data = snapshot.LastUpdate
		title = "Tracking - Last Location Update"
	case "config":
		// API keys stay out of the debug page.
		redacted := webUI.Config
		redacted.ApiKeys = nil
		data = redacted
		title = "Application - Config"
	default:
		data = map[string]string{
			"error": "Please use one of the following: stations, snapshot, progression, direction, eta, warnings, alerts, last_update, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
