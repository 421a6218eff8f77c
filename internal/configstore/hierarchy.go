package configstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"forecastwb/internal/errors"
)

// HierarchyMapping maps restaurants to cities and cities to countries for
// rollup aggregation.
type HierarchyMapping struct {
	RestaurantToCity map[string]string `json:"restaurant_to_city" validate:"required"`
	CityToCountry    map[string]string `json:"city_to_country" validate:"required"`
}

// RollupResult holds values summed up each hierarchy level.
type RollupResult struct {
	Cities    map[string]float64 `json:"cities"`
	Countries map[string]float64 `json:"countries"`
}

// HierarchyMapping reads the stored mapping. Files written before the
// restaurant rename may still use the store_to_city key; those are
// migrated on read. A missing file yields the sample mapping.
func (s *Store) HierarchyMapping() HierarchyMapping {
	data, err := os.ReadFile(s.paths.HierarchyMapFile)
	if err != nil {
		return HierarchyMapping{
			RestaurantToCity: map[string]string{"Restaurant A": "Mumbai"},
			CityToCountry:    map[string]string{"Mumbai": "India"},
		}
	}

	var raw struct {
		RestaurantToCity map[string]string `json:"restaurant_to_city"`
		StoreToCity      map[string]string `json:"store_to_city"`
		CityToCountry    map[string]string `json:"city_to_country"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return HierarchyMapping{
			RestaurantToCity: map[string]string{},
			CityToCountry:    map[string]string{},
		}
	}
	mapping := HierarchyMapping{
		RestaurantToCity: raw.RestaurantToCity,
		CityToCountry:    raw.CityToCountry,
	}
	if mapping.RestaurantToCity == nil {
		mapping.RestaurantToCity = raw.StoreToCity
	}
	if mapping.RestaurantToCity == nil {
		mapping.RestaurantToCity = map[string]string{}
	}
	if mapping.CityToCountry == nil {
		mapping.CityToCountry = map[string]string{}
	}
	return mapping
}

// SaveHierarchyMapping persists the mapping. Editors and above only.
func (s *Store) SaveHierarchyMapping(ctx context.Context, role Role, mapping *HierarchyMapping) error {
	if err := EnsureMinRole(role, RoleEditor); err != nil {
		return err
	}
	if err := s.validate.Struct(mapping); err != nil {
		return errors.NewValidationError("invalid hierarchy mapping: " + err.Error())
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode hierarchy mapping", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.paths.HierarchyMapFile), 0o755); err != nil {
		return errors.NewStorageError("failed to create config directory", err)
	}
	if err := os.WriteFile(s.paths.HierarchyMapFile, data, 0o644); err != nil {
		return errors.NewStorageError("failed to write hierarchy mapping", err)
	}
	s.appendAudit(ctx, "updated hierarchy mapping", role, "global")
	return nil
}

// Rollup sums per-restaurant values up to city and country totals using
// the stored mapping. Unmapped entries land in an Unknown bucket.
func (s *Store) Rollup(restaurantValues map[string]float64) RollupResult {
	mapping := s.HierarchyMapping()
	result := RollupResult{
		Cities:    make(map[string]float64),
		Countries: make(map[string]float64),
	}
	for restaurant, value := range restaurantValues {
		city, ok := mapping.RestaurantToCity[restaurant]
		if !ok {
			city = "Unknown"
		}
		result.Cities[city] += value
		country, ok := mapping.CityToCountry[city]
		if !ok {
			country = "Unknown"
		}
		result.Countries[country] += value
	}
	return result
}
