package models

import "linetracker.onebusaway.org/internal/catalog"

// Station is the API shape for one station of the line.
type Station struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	NorthOrder int     `json:"northOrder"`
	SouthOrder int     `json:"southOrder"`
	IsTerminal bool    `json:"isTerminal"`
	Landmark   string  `json:"landmark,omitempty"`
}

// NewStation maps a catalog station to its API shape.
func NewStation(st catalog.Station) Station {
	return Station{
		ID:         st.ID,
		Name:       st.Name,
		Lat:        st.Lat,
		Lon:        st.Lon,
		NorthOrder: st.NorthOrder,
		SouthOrder: st.SouthOrder,
		IsTerminal: st.IsTerminal,
		Landmark:   st.Landmark,
	}
}
