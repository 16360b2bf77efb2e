package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/adriannogy/TFG/models"
	"github.com/adriannogy/TFG/osm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestaurantPage is a page of locally stored restaurants.
type RestaurantPage struct {
	Content       []models.Restaurant `json:"content"`
	Page          int                 `json:"page"`
	Size          int                 `json:"size"`
	TotalElements int64               `json:"total_elements"`
	TotalPages    int                 `json:"total_pages"`
}

// ExternalPage is a page of raw OSM elements. The external API has no
// pagination of its own, so the full result is sliced app-side.
type ExternalPage struct {
	Content       []osm.Element `json:"content"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"total_elements"`
	TotalPages    int           `json:"total_pages"`
}

// ImportRequest carries one OSM element chosen by a client for import.
type ImportRequest struct {
	OsmID   int64   `json:"osm_id" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	City    string  `json:"city" binding:"required"`
	Address string  `json:"address"`
	Cuisine string  `json:"cuisine"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// RestaurantService manages the local restaurant catalogue and its bridge to
// OpenStreetMap. External lookups degrade to empty results when the OSM APIs
// are unreachable; only an unknown city is reported to the caller.
type RestaurantService struct {
	DB  *gorm.DB
	OSM *osm.Client
}

func NewRestaurantService(db *gorm.DB, client *osm.Client) *RestaurantService {
	return &RestaurantService{DB: db, OSM: client}
}

// GetByID fetches one local restaurant.
func (s *RestaurantService) GetByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("restaurant not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// Search pages through the local catalogue. Name matches by prefix, address
// by substring, city and cuisine exactly, all case-insensitive.
func (s *RestaurantService) Search(ctx context.Context, name, city, cuisine, address string, page, size int) (*RestaurantPage, error) {
	page, size = normalizePage(page, size)

	query := s.DB.WithContext(ctx).Model(&models.Restaurant{})
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(name)+"%")
	}
	if city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if cuisine != "" {
		query = query.Where("LOWER(cuisine) = ?", strings.ToLower(cuisine))
	}
	if address != "" {
		query = query.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(address)+"%")
	}

	result := &RestaurantPage{Content: []models.Restaurant{}, Page: page, Size: size}
	if err := query.Count(&result.TotalElements).Error; err != nil {
		return nil, err
	}
	result.TotalPages = totalPages(result.TotalElements, size)

	err := query.Order("name ASC").Limit(size).Offset(page * size).Find(&result.Content).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SearchExternal queries OSM for restaurants in a city and slices the full
// result into the requested page.
func (s *RestaurantService) SearchExternal(ctx context.Context, city, name, cuisine, address string, page, size int) (*ExternalPage, error) {
	if strings.TrimSpace(city) == "" {
		return nil, badRequestf("city is required")
	}
	page, size = normalizePage(page, size)

	elements, err := s.fetchExternal(ctx, city, name, cuisine, address)
	if err != nil {
		return nil, err
	}

	result := &ExternalPage{
		Content:       []osm.Element{},
		Page:          page,
		Size:          size,
		TotalElements: int64(len(elements)),
		TotalPages:    totalPages(int64(len(elements)), size),
	}

	start := page * size
	if start < len(elements) {
		end := start + size
		if end > len(elements) {
			end = len(elements)
		}
		result.Content = elements[start:end]
	}
	return result, nil
}

// Import persists one OSM element locally. Importing an element that already
// exists returns the stored row unchanged.
func (s *RestaurantService) Import(ctx context.Context, req *ImportRequest) (*models.Restaurant, error) {
	var existing models.Restaurant
	err := s.DB.WithContext(ctx).Where("osm_id = ?", req.OsmID).Take(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	osmID := req.OsmID
	restaurant := models.Restaurant{
		OsmID:   &osmID,
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Cuisine: req.Cuisine,
		Lat:     req.Lat,
		Lon:     req.Lon,
	}
	if err := s.DB.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, err
	}
	log.Printf("imported restaurant %q (osm %d)", restaurant.Name, req.OsmID)
	return &restaurant, nil
}

// SyncCity imports every OSM restaurant of a city that is not stored yet and
// returns how many rows were created. Existing osm_ids are skipped.
func (s *RestaurantService) SyncCity(ctx context.Context, city string) (int, error) {
	if strings.TrimSpace(city) == "" {
		return 0, badRequestf("city is required")
	}

	elements, err := s.fetchExternal(ctx, city, "", "", "")
	if err != nil {
		return 0, err
	}

	created := 0
	for _, element := range elements {
		osmID := element.ID
		restaurant := models.Restaurant{
			OsmID:   &osmID,
			Name:    element.Name(),
			City:    city,
			Address: element.Address(),
			Cuisine: element.Cuisine(),
			Lat:     element.Lat,
			Lon:     element.Lon,
		}
		result := s.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "osm_id"}}, DoNothing: true}).
			Create(&restaurant)
		if result.Error != nil {
			return created, result.Error
		}
		created += int(result.RowsAffected)
	}
	log.Printf("synced city %q: %d of %d restaurants were new", city, created, len(elements))
	return created, nil
}

// ResolveByName finds a restaurant by name in a city, importing the best OSM
// match on a local miss.
func (s *RestaurantService) ResolveByName(ctx context.Context, city, name string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := s.DB.WithContext(ctx).
		Where("LOWER(name) = ? AND LOWER(city) = ?", strings.ToLower(name), strings.ToLower(city)).
		Take(&restaurant).Error
	if err == nil {
		return &restaurant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	elements, err := s.fetchExternal(ctx, city, name, "", "")
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, notFoundf("restaurant %q not found in %s", name, city)
	}

	element := elements[0]
	return s.Import(ctx, &ImportRequest{
		OsmID:   element.ID,
		Name:    element.Name(),
		City:    city,
		Address: element.Address(),
		Cuisine: element.Cuisine(),
		Lat:     element.Lat,
		Lon:     element.Lon,
	})
}

// fetchExternal wraps the OSM client with the degradation rules: an unknown
// city surfaces as a conflict, any other failure logs and yields no results.
func (s *RestaurantService) fetchExternal(ctx context.Context, city, name, cuisine, address string) ([]osm.Element, error) {
	elements, err := s.OSM.SearchRestaurants(ctx, city, name, cuisine, address)
	if err != nil {
		if errors.Is(err, osm.ErrCityNotFound) {
			return nil, conflictf("city not found: %s", city)
		}
		log.Printf("external restaurant search unavailable for %q: %v", city, err)
		return []osm.Element{}, nil
	}
	return elements, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultFeedSize
	}
	if size > maxFeedSize {
		size = maxFeedSize
	}
	return page, size
}

func totalPages(total int64, size int) int {
	return int((total + int64(size) - 1) / int64(size))
}
