package webui

import (
	"linetracker.onebusaway.org/internal/app"
)

// WebUI serves the HTML debug pages. It reads the same application
// dependencies as the REST API but renders raw internal state instead
// of the JSON response envelope.
type WebUI struct {
	*app.Application
}

func NewWebUI(app *app.Application) *WebUI {
	return &WebUI{Application: app}
}
