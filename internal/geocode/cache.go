package geocode

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

const hotTierMaxTTL = time.Hour

// Cache is the two-tier spatial geocoding cache. The persistent store owns
// correctness; the in-process hot tier only short-circuits exact repeat
// lookups of the same query point.
type Cache struct {
	store repository.GeocodeCacheRepository
	hot   *gocache.Cache
	now   func() time.Time
}

// NewCache creates a cache on top of the given repository.
func NewCache(store repository.GeocodeCacheRepository) *Cache {
	return &Cache{
		store: store,
		hot:   gocache.New(hotTierMaxTTL, 10*time.Minute),
		now:   time.Now,
	}
}

// Get returns the nearest cached location within radiusMeters of the query
// point, or nil on a miss. Candidates are prefiltered with a bounding box,
// then refined with exact great-circle distance. Ties on distance keep the
// oldest entry.
func (c *Cache) Get(ctx context.Context, lat, lon, radiusMeters float64) (*models.GeocodedLocation, error) {
	key := models.GeocodeCacheKey(lat, lon)
	if v, ok := c.hot.Get(key); ok {
		loc := v.(models.GeocodedLocation)
		return &loc, nil
	}

	center := spatial.Point{Lat: lat, Lon: lon}
	box, err := spatial.BoundingBox(center, radiusMeters)
	if err != nil {
		return nil, err
	}

	entries, err := c.store.InRange(ctx, box, c.now().Unix())
	if err != nil {
		return nil, err
	}

	// InRange returns rows ordered by cached_at ascending, so a strict
	// comparison keeps the oldest entry among equidistant candidates.
	var best *models.GeocodeCacheEntry
	bestDist := radiusMeters
	for i := range entries {
		e := &entries[i]
		d, err := spatial.Distance(center, spatial.Point{Lat: e.Latitude, Lon: e.Longitude})
		if err != nil || d > radiusMeters {
			continue
		}
		if best == nil || d < bestDist {
			best = e
			bestDist = d
		}
	}
	if best == nil {
		return nil, nil
	}

	loc := best.GeocodedLocation
	return &loc, nil
}

// Put stores a geocoded location under its canonical query-point key,
// overwriting any previous entry for the same point.
func (c *Cache) Put(ctx context.Context, loc *models.GeocodedLocation, ttl time.Duration) error {
	now := c.now()
	entry := &models.GeocodeCacheEntry{
		ID:               models.GeocodeCacheKey(loc.Latitude, loc.Longitude),
		GeocodedLocation: *loc,
		CachedAt:         now.Unix(),
		ExpiresAt:        now.Add(ttl).Unix(),
	}
	if err := c.store.Put(ctx, entry); err != nil {
		return err
	}

	hotTTL := ttl
	if hotTTL > hotTierMaxTTL {
		hotTTL = hotTierMaxTTL
	}
	c.hot.Set(entry.ID, *loc, hotTTL)
	return nil
}

// ClearExpired drops every entry past its expiry and reports how many rows
// were removed. Reads already ignore expired rows; this is maintenance.
func (c *Cache) ClearExpired(ctx context.Context) (int64, error) {
	return c.store.DeleteExpired(ctx, c.now().Unix())
}

// Clear drops the entire cache, both tiers.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.hot.Flush()
	return nil
}

// Count reports the number of persisted entries, expired rows included.
func (c *Cache) Count(ctx context.Context) (int64, error) {
	return c.store.Count(ctx)
}
