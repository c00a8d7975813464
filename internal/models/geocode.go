package models

import "fmt"

// GeocodedLocation is the address shape returned by the remote provider and
// cached locally. Lat/lon are the coordinates of the originating query point.
type GeocodedLocation struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	FormattedAddress string `json:"formattedAddress,omitempty" db:"formatted_address"`
	Street           string `json:"street,omitempty" db:"street"`
	StreetNumber     string `json:"streetNumber,omitempty" db:"street_number"`
	City             string `json:"city,omitempty" db:"city"`
	State            string `json:"state,omitempty" db:"state"`
	PostalCode       string `json:"postalCode,omitempty" db:"postal_code"`
	CountryCode      string `json:"countryCode,omitempty" db:"country_code"`
	CountryName      string `json:"countryName,omitempty" db:"country_name"`
	POIName          string `json:"poiName,omitempty" db:"poi_name"`
}

// GeocodeCacheEntry is one cached reverse-geocoding result. An entry is valid
// for reuse only while now < ExpiresAt; expired rows are evicted lazily.
type GeocodeCacheEntry struct {
	ID string `json:"id" db:"id"` // "{lat},{lon}" of the query point
	GeocodedLocation
	CachedAt  int64 `json:"cachedAt" db:"cached_at"`
	ExpiresAt int64 `json:"expiresAt" db:"expires_at"`
}

// GeocodeCacheKey builds the canonical cache key for a query point.
func GeocodeCacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}
