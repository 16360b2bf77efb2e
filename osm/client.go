package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultOverpassURL  = "https://overpass-api.de"

	// Overpass area ids are the element id plus a type-dependent offset.
	relationAreaOffset = 3600000000
	wayAreaOffset      = 2400000000

	userAgent = "TFG-restaurantes/1.0"
)

// ErrCityNotFound means the geocoder returned no match for the city.
var ErrCityNotFound = errors.New("city not found")

// Element is one restaurant node from an Overpass response. Name, cuisine
// and address live in the free-form tag map.
type Element struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Name returns the name tag, with the same placeholder the importer stores
// when a node is unnamed.
func (e Element) Name() string {
	return e.tagOr("name", "Nombre no disponible")
}

func (e Element) Cuisine() string {
	return e.tagOr("cuisine", "No especificada")
}

func (e Element) Address() string {
	street := e.tagOr("addr:street", "")
	number := e.tagOr("addr:housenumber", "")
	return strings.TrimSpace(street + " " + number)
}

func (e Element) tagOr(key, fallback string) string {
	if v, ok := e.Tags[key]; ok && v != "" {
		return v
	}
	return fallback
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

type geocodeResult struct {
	OsmID   int64  `json:"osm_id"`
	OsmType string `json:"osm_type"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

// Client talks to Nominatim (geocoding) and the Overpass API (restaurant
// search). Base URLs are overridable for tests.
type Client struct {
	HTTP         *http.Client
	NominatimURL string
	OverpassURL  string
}

func NewClient() *Client {
	nominatim := os.Getenv("OSM_NOMINATIM_URL")
	if nominatim == "" {
		nominatim = defaultNominatimURL
	}
	overpass := os.Getenv("OSM_OVERPASS_URL")
	if overpass == "" {
		overpass = defaultOverpassURL
	}
	return &Client{
		HTTP:         &http.Client{Timeout: 15 * time.Second},
		NominatimURL: nominatim,
		OverpassURL:  overpass,
	}
}

// SearchRestaurants geocodes the city to an Overpass area, then queries all
// restaurant nodes in it, optionally narrowed by name prefix, cuisine and
// street.
func (c *Client) SearchRestaurants(ctx context.Context, city, name, cuisine, street string) ([]Element, error) {
	areaID, err := c.cityAreaID(ctx, city)
	if err != nil {
		return nil, err
	}

	var nameFilter, cuisineFilter, streetFilter string
	if name != "" {
		nameFilter = fmt.Sprintf("[~\"name\"~\"^%s\",i]", name)
	}
	if cuisine != "" {
		cuisineFilter = fmt.Sprintf("[cuisine=%s]", strings.ToLower(cuisine))
	}
	if street != "" {
		streetFilter = fmt.Sprintf("[~\"addr:street\"~\"%s\",i]", street)
	}
	query := fmt.Sprintf(
		"[out:json];area(%d)->.searchArea;node(area.searchArea)[amenity=restaurant]%s%s%s;out body;",
		areaID, nameFilter, cuisineFilter, streetFilter,
	)

	body := url.Values{"data": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.OverpassURL+"/api/interpreter", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Elements == nil {
		parsed.Elements = []Element{}
	}
	return parsed.Elements, nil
}

// cityAreaID geocodes "<city>, Spain" and converts the top result to an
// Overpass area id.
func (c *Client) cityAreaID(ctx context.Context, city string) (int64, error) {
	params := url.Values{
		"q":      {city + ", Spain"},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.NominatimURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}

	areaID := results[0].OsmID
	switch results[0].OsmType {
	case "relation":
		areaID += relationAreaOffset
	case "way":
		areaID += wayAreaOffset
	}
	return areaID, nil
}
