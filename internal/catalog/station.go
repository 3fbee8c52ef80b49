package catalog

import (
	"fmt"
	"sort"
)

// Direction identifies one of the two fixed station orderings for the line.
type Direction string

const (
	Northbound Direction = "northbound"
	Southbound Direction = "southbound"
)

// Opposite returns the reverse travel direction.
func (d Direction) Opposite() Direction {
	if d == Northbound {
		return Southbound
	}
	return Northbound
}

// IsValid reports whether d is one of the two known directions.
func (d Direction) IsValid() bool {
	return d == Northbound || d == Southbound
}

// Station is one stop on the line. Stations are immutable once loaded;
// identity is by ID.
type Station struct {
	ID         string  `yaml:"id" validate:"required"`
	Name       string  `yaml:"name" validate:"required"`
	Lat        float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon        float64 `yaml:"lon" validate:"gte=-180,lte=180"`
	NorthOrder int     `yaml:"northOrder" validate:"gte=1"`
	SouthOrder int     `yaml:"southOrder" validate:"gte=1"`
	IsTerminal bool    `yaml:"terminal"`
	Landmark   string  `yaml:"landmark"`
}

// Order returns the station's rank under the given travel direction.
func (s Station) Order(direction Direction) int {
	if direction == Southbound {
		return s.SouthOrder
	}
	return s.NorthOrder
}

// Catalog holds the full, immutable station list for the line and provides
// direction-ordered views of it.
type Catalog struct {
	stations []Station
	byID     map[string]int
}

// NewCatalog builds a catalog from the given stations. It fails if any
// station ID repeats or any order rank repeats within a direction.
func NewCatalog(stations []Station) (*Catalog, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("catalog requires at least one station")
	}

	byID := make(map[string]int, len(stations))
	northOrders := make(map[int]string, len(stations))
	southOrders := make(map[int]string, len(stations))

	for i, s := range stations {
		if _, exists := byID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate station id %q", s.ID)
		}
		byID[s.ID] = i

		if other, exists := northOrders[s.NorthOrder]; exists {
			return nil, fmt.Errorf("stations %q and %q share northbound order %d", other, s.ID, s.NorthOrder)
		}
		northOrders[s.NorthOrder] = s.ID

		if other, exists := southOrders[s.SouthOrder]; exists {
			return nil, fmt.Errorf("stations %q and %q share southbound order %d", other, s.ID, s.SouthOrder)
		}
		southOrders[s.SouthOrder] = s.ID
	}

	return &Catalog{
		stations: stations,
		byID:     byID,
	}, nil
}

// Get returns the station with the given ID.
func (c *Catalog) Get(id string) (Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Station{}, false
	}
	return c.stations[i], true
}

// Len returns the number of stations on the line.
func (c *Catalog) Len() int {
	return len(c.stations)
}

// Stations returns a copy of the station list in catalog order.
func (c *Catalog) Stations() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// OrderedBy returns the stations sorted by their rank under the given
// direction, lowest rank first.
func (c *Catalog) OrderedBy(direction Direction) []Station {
	out := c.Stations()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Order(direction) < out[j].Order(direction)
	})
	return out
}
