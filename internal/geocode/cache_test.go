package geocode

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

func newTestCache() (*Cache, repository.GeocodeCacheRepository) {
	store := repository.NewMemoryStore().GeocodeCache()
	return NewCache(store), store
}

func seedEntry(t *testing.T, store repository.GeocodeCacheRepository, id string, lat, lon float64, cachedAt, expiresAt int64, address string) {
	t.Helper()
	err := store.Put(context.Background(), &models.GeocodeCacheEntry{
		ID: id,
		GeocodedLocation: models.GeocodedLocation{
			Latitude:         lat,
			Longitude:        lon,
			FormattedAddress: address,
		},
		CachedAt:  cachedAt,
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
}

func TestCachePutGet(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	loc := &models.GeocodedLocation{
		Latitude:         52.520815,
		Longitude:        13.409419,
		FormattedAddress: "Panoramastraße 1A, 10178 Berlin",
		City:             "Berlin",
		CountryCode:      "DE",
	}
	require.NoError(t, cache.Put(ctx, loc, time.Hour))

	got, err := cache.Get(ctx, 52.520815, 13.409419, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Panoramastraße 1A, 10178 Berlin", got.FormattedAddress)
	assert.Equal(t, "Berlin", got.City)
}

func TestCacheGetNearbyHit(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	loc := &models.GeocodedLocation{
		Latitude:         52.5000,
		Longitude:        13.4000,
		FormattedAddress: "somewhere",
	}
	require.NoError(t, cache.Put(ctx, loc, time.Hour))

	// ~55 m away: inside the 120 m lookup radius, different cache key.
	got, err := cache.Get(ctx, 52.5005, 13.4000, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "somewhere", got.FormattedAddress)

	// ~330 m away: outside the radius.
	miss, err := cache.Get(ctx, 52.5030, 13.4000, 120)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheGetNearestWins(t *testing.T) {
	cache, store := newTestCache()
	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()

	seedEntry(t, store, "far", 52.5008, 13.4000, 10, future, "far entry")
	seedEntry(t, store, "near", 52.5002, 13.4000, 20, future, "near entry")

	got, err := cache.Get(ctx, 52.5001, 13.4000, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "near entry", got.FormattedAddress)
}

func TestCacheGetTieBreaksOldest(t *testing.T) {
	cache, store := newTestCache()
	ctx := context.Background()
	future := time.Now().Add(time.Hour).Unix()

	// Identical coordinates, different cache ages: the older entry wins.
	seedEntry(t, store, "newer", 52.5002, 13.4000, 200, future, "newer entry")
	seedEntry(t, store, "older", 52.5002, 13.4000, 100, future, "older entry")

	got, err := cache.Get(ctx, 52.5000, 13.4000, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "older entry", got.FormattedAddress)
}

func TestCacheLazyExpiry(t *testing.T) {
	cache, store := newTestCache()
	ctx := context.Background()
	past := time.Now().Add(-time.Minute).Unix()

	seedEntry(t, store, "expired", 52.5000, 13.4000, 10, past, "stale")

	got, err := cache.Get(ctx, 52.5000, 13.4000, 120)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries are invisible to reads")

	// The row itself stays until explicit maintenance.
	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := cache.ClearExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err = cache.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCachePutOverwrites(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	first := &models.GeocodedLocation{Latitude: 52.5, Longitude: 13.4, FormattedAddress: "first"}
	second := &models.GeocodedLocation{Latitude: 52.5, Longitude: 13.4, FormattedAddress: "second"}
	require.NoError(t, cache.Put(ctx, first, time.Hour))
	require.NoError(t, cache.Put(ctx, second, time.Hour))

	count, err := cache.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := cache.Get(ctx, 52.5, 13.4, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.FormattedAddress)
}

func TestCacheClear(t *testing.T) {
	cache, _ := newTestCache()
	ctx := context.Background()

	loc := &models.GeocodedLocation{Latitude: 52.5, Longitude: 13.4, FormattedAddress: "gone soon"}
	require.NoError(t, cache.Put(ctx, loc, time.Hour))
	require.NoError(t, cache.Clear(ctx))

	got, err := cache.Get(ctx, 52.5, 13.4, 120)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheGetNearPole(t *testing.T) {
	cache, store := newTestCache()
	ctx := context.Background()

	// The bbox prefilter degenerates to the full longitude span up here; the
	// lookup must still refine by exact distance without error.
	seedEntry(t, store, "station", 89.95, 0, 100, time.Now().Unix()+3600, "research station")

	got, err := cache.Get(ctx, 89.95, 0, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "research station", got.FormattedAddress)

	// Same latitude on the far side of the pole is well outside the radius.
	got, err = cache.Get(ctx, 89.95, 179, 120)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheGetAcrossAntimeridian(t *testing.T) {
	cache, store := newTestCache()
	ctx := context.Background()

	// Entry and query sit ~55 m apart on opposite sides of lon 180; the
	// prefilter box must not lose the far side.
	seedEntry(t, store, "dateline", 0, -179.9996, 100, time.Now().Unix()+3600, "across the line")

	got, err := cache.Get(ctx, 0, 179.9999, 120)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "across the line", got.FormattedAddress)
}

func TestCacheGetInvalidCoordinate(t *testing.T) {
	cache, _ := newTestCache()

	_, err := cache.Get(context.Background(), math.NaN(), 13.4, 120)
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
}

func TestGeocodeCacheKey(t *testing.T) {
	assert.Equal(t, "52.520815,13.409419", models.GeocodeCacheKey(52.520815, 13.409419))
	assert.Equal(t, "-33.865100,151.209600", models.GeocodeCacheKey(-33.8651, 151.2096))
}
