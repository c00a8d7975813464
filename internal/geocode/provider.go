package geocode

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

// Provider resolves coordinates into addresses. Failures are wrapped in
// models.ErrGeocodingProvider so callers can degrade gracefully.
type Provider interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodedLocation, error)
}

// GoogleProvider implements Provider against the Google Maps Geocoding API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// ReverseGeocode looks up the address of a coordinate pair.
func (p *GoogleProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodedLocation, error) {
	resp, err := p.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reverse geocode failed: %v", models.ErrGeocodingProvider, err)
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("%w: no results for %.6f,%.6f", models.ErrGeocodingProvider, lat, lon)
	}

	best := resp[0]
	loc := &models.GeocodedLocation{
		Latitude:         lat,
		Longitude:        lon,
		FormattedAddress: best.FormattedAddress,
	}
	for _, comp := range best.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				loc.StreetNumber = comp.LongName
			case "route":
				loc.Street = comp.LongName
			case "locality", "postal_town":
				loc.City = comp.LongName
			case "administrative_area_level_1":
				loc.State = comp.LongName
			case "postal_code":
				loc.PostalCode = comp.LongName
			case "country":
				loc.CountryCode = comp.ShortName
				loc.CountryName = comp.LongName
			case "point_of_interest", "establishment", "premise":
				if loc.POIName == "" {
					loc.POIName = comp.LongName
				}
			}
		}
	}
	return loc, nil
}
