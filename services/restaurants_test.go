package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adriannogy/TFG/models"
	"github.com/adriannogy/TFG/osm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeOSM backs an osm.Client with canned Nominatim and Overpass responses.
func fakeOSM(t *testing.T, geocodeJSON, overpassJSON string) (*osm.Client, func()) {
	t.Helper()

	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geocodeJSON))
	}))
	overpass := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(overpassJSON))
	}))
	client := &osm.Client{
		HTTP:         http.DefaultClient,
		NominatimURL: nominatim.URL,
		OverpassURL:  overpass.URL,
	}
	return client, func() {
		nominatim.Close()
		overpass.Close()
	}
}

func brokenOSM(t *testing.T) (*osm.Client, func()) {
	t.Helper()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	client := &osm.Client{
		HTTP:         http.DefaultClient,
		NominatimURL: down.URL,
		OverpassURL:  down.URL,
	}
	return client, down.Close
}

func restaurantCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&count).Error)
	return count
}

func TestRestaurantSearch_Filters(t *testing.T) {
	db := setupDB(t)
	svc := NewRestaurantService(db, nil)

	createRestaurant(t, db, "Casa Paco", "Madrid")
	createRestaurant(t, db, "Casa Lola", "Sevilla")
	createRestaurant(t, db, "Burger Max", "Madrid")

	page, err := svc.Search(context.Background(), "casa", "", "", "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)

	page, err = svc.Search(context.Background(), "casa", "madrid", "", "", 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Casa Paco", page.Content[0].Name)

	page, err = svc.Search(context.Background(), "", "", "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 1)
}

func TestSearchExternal_PagesAppSide(t *testing.T) {
	client, shutdown := fakeOSM(t,
		`[{"osm_id": 1, "osm_type": "relation"}]`,
		`{"elements": [
			{"id": 1, "tags": {"name": "Uno"}},
			{"id": 2, "tags": {"name": "Dos"}},
			{"id": 3, "tags": {"name": "Tres"}}
		]}`,
	)
	defer shutdown()

	svc := NewRestaurantService(setupDB(t), client)

	page, err := svc.SearchExternal(context.Background(), "madrid", "", "", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Tres", page.Content[0].Name())

	beyond, err := svc.SearchExternal(context.Background(), "madrid", "", "", "", 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Content)
}

func TestSearchExternal_UnknownCityConflicts(t *testing.T) {
	client, shutdown := fakeOSM(t, `[]`, `{"elements": []}`)
	defer shutdown()

	svc := NewRestaurantService(setupDB(t), client)
	_, err := svc.SearchExternal(context.Background(), "atlantis", "", "", "", 0, 10)
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestSearchExternal_DegradesToEmptyWhenDown(t *testing.T) {
	client, shutdown := brokenOSM(t)
	defer shutdown()

	svc := NewRestaurantService(setupDB(t), client)
	page, err := svc.SearchExternal(context.Background(), "madrid", "", "", "", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Zero(t, page.TotalElements)
}

func TestImport_IdempotentByOsmID(t *testing.T) {
	db := setupDB(t)
	svc := NewRestaurantService(db, nil)

	req := &ImportRequest{OsmID: 42, Name: "Casa Paco", City: "Madrid"}
	first, err := svc.Import(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Import(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), restaurantCount(t, db))
}

func TestSyncCity_UpsertsByOsmID(t *testing.T) {
	client, shutdown := fakeOSM(t,
		`[{"osm_id": 1, "osm_type": "relation"}]`,
		`{"elements": [
			{"id": 10, "lat": 40.1, "lon": -3.1, "tags": {"name": "Uno", "cuisine": "spanish", "addr:street": "Mayor", "addr:housenumber": "1"}},
			{"id": 11, "lat": 40.2, "lon": -3.2, "tags": {"name": "Dos"}}
		]}`,
	)
	defer shutdown()

	db := setupDB(t)
	svc := NewRestaurantService(db, client)

	created, err := svc.SyncCity(context.Background(), "Madrid")
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, int64(2), restaurantCount(t, db))

	// Second sync finds everything already present
	created, err = svc.SyncCity(context.Background(), "Madrid")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, int64(2), restaurantCount(t, db))

	var uno models.Restaurant
	require.NoError(t, db.Where("name = ?", "Uno").Take(&uno).Error)
	assert.Equal(t, "Mayor 1", uno.Address)
	assert.Equal(t, "Madrid", uno.City)
}

func TestResolveByName_ImportsOnLocalMiss(t *testing.T) {
	client, shutdown := fakeOSM(t,
		`[{"osm_id": 1, "osm_type": "relation"}]`,
		`{"elements": [{"id": 77, "lat": 40.1, "lon": -3.1, "tags": {"name": "Casa Paco"}}]}`,
	)
	defer shutdown()

	db := setupDB(t)
	svc := NewRestaurantService(db, client)

	resolved, err := svc.ResolveByName(context.Background(), "Madrid", "Casa Paco")
	require.NoError(t, err)
	require.NotNil(t, resolved.OsmID)
	assert.Equal(t, int64(77), *resolved.OsmID)

	// Now it resolves locally without touching OSM
	shutdown()
	again, err := svc.ResolveByName(context.Background(), "Madrid", "casa paco")
	require.NoError(t, err)
	assert.Equal(t, resolved.ID, again.ID)
}

func TestResolveByName_NotFoundAnywhere(t *testing.T) {
	client, shutdown := fakeOSM(t,
		`[{"osm_id": 1, "osm_type": "relation"}]`,
		`{"elements": []}`,
	)
	defer shutdown()

	svc := NewRestaurantService(setupDB(t), client)
	_, err := svc.ResolveByName(context.Background(), "Madrid", "Inexistente")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}
