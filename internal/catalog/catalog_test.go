package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStations() []Station {
	return []Station{
		{ID: "angle-lake", Name: "Angle Lake", Lat: 47.4227, Lon: -122.2978, NorthOrder: 1, SouthOrder: 3, IsTerminal: true},
		{ID: "seatac", Name: "SeaTac/Airport", Lat: 47.4450, Lon: -122.2970, NorthOrder: 2, SouthOrder: 2, Landmark: "Airport"},
		{ID: "tukwila", Name: "Tukwila Int'l Blvd", Lat: 47.4640, Lon: -122.2884, NorthOrder: 3, SouthOrder: 1, IsTerminal: true},
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(testStations())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	st, ok := c.Get("seatac")
	require.True(t, ok)
	assert.Equal(t, "SeaTac/Airport", st.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	t.Run("Duplicate id", func(t *testing.T) {
		stations := testStations()
		stations[2].ID = stations[0].ID
		_, err := NewCatalog(stations)
		assert.Error(t, err)
	})

	t.Run("Duplicate northbound order", func(t *testing.T) {
		stations := testStations()
		stations[2].NorthOrder = stations[0].NorthOrder
		_, err := NewCatalog(stations)
		assert.Error(t, err)
	})

	t.Run("Duplicate southbound order", func(t *testing.T) {
		stations := testStations()
		stations[2].SouthOrder = stations[0].SouthOrder
		_, err := NewCatalog(stations)
		assert.Error(t, err)
	})

	t.Run("Empty catalog", func(t *testing.T) {
		_, err := NewCatalog(nil)
		assert.Error(t, err)
	})
}

func TestOrderedBy(t *testing.T) {
	c, err := NewCatalog(testStations())
	require.NoError(t, err)

	north := c.OrderedBy(Northbound)
	require.Len(t, north, 3)
	assert.Equal(t, "angle-lake", north[0].ID)
	assert.Equal(t, "tukwila", north[2].ID)

	south := c.OrderedBy(Southbound)
	require.Len(t, south, 3)
	assert.Equal(t, "tukwila", south[0].ID)
	assert.Equal(t, "angle-lake", south[2].ID)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Southbound, Northbound.Opposite())
	assert.Equal(t, Northbound, Southbound.Opposite())
	assert.True(t, Northbound.IsValid())
	assert.True(t, Southbound.IsValid())
	assert.False(t, Direction("sideways").IsValid())
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`
stations:
  - id: s1
    name: First Street
    lat: 47.60
    lon: -122.33
    northOrder: 1
    southOrder: 2
    terminal: true
  - id: s2
    name: Second Street
    lat: 47.61
    lon: -122.33
    northOrder: 2
    southOrder: 1
    terminal: true
    landmark: City Hall
`)

	c, err := parseYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	st, ok := c.Get("s2")
	require.True(t, ok)
	assert.Equal(t, "City Hall", st.Landmark)
	assert.True(t, st.IsTerminal)
}

func TestParseYAMLRejectsInvalid(t *testing.T) {
	t.Run("Missing name", func(t *testing.T) {
		doc := []byte(`
stations:
  - id: s1
    lat: 47.60
    lon: -122.33
    northOrder: 1
    southOrder: 1
`)
		_, err := parseYAML(doc)
		assert.Error(t, err)
	})

	t.Run("Latitude out of range", func(t *testing.T) {
		doc := []byte(`
stations:
  - id: s1
    name: First Street
    lat: 147.60
    lon: -122.33
    northOrder: 1
    southOrder: 1
`)
		_, err := parseYAML(doc)
		assert.Error(t, err)
	})

	t.Run("No stations", func(t *testing.T) {
		_, err := parseYAML([]byte(`stations: []`))
		assert.Error(t, err)
	})
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close() // nolint:errcheck

	ctx := context.Background()

	_, err = store.Load(ctx)
	assert.Error(t, err, "empty store should not load a catalog")

	original, err := NewCatalog(testStations())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, original))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original.Stations(), loaded.Stations())

	// Saving again replaces rather than appends.
	require.NoError(t, store.Save(ctx, original))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
}
