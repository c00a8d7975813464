package repository

import (
	"context"
	"database/sql"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

type sqliteGeocodeRepo struct {
	q DBTX
}

const geocodeColumns = `id, latitude, longitude, formatted_address, street, street_number,
	city, state, postal_code, country_code, country_name, poi_name, cached_at, expires_at`

func (r *sqliteGeocodeRepo) Put(ctx context.Context, e *models.GeocodeCacheEntry) error {
	query := `INSERT INTO geocode_cache (` + geocodeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			formatted_address = excluded.formatted_address,
			street = excluded.street,
			street_number = excluded.street_number,
			city = excluded.city,
			state = excluded.state,
			postal_code = excluded.postal_code,
			country_code = excluded.country_code,
			country_name = excluded.country_name,
			poi_name = excluded.poi_name,
			cached_at = excluded.cached_at,
			expires_at = excluded.expires_at`

	_, err := r.q.ExecContext(ctx, query,
		e.ID, e.Latitude, e.Longitude, e.FormattedAddress, e.Street, e.StreetNumber,
		e.City, e.State, e.PostalCode, e.CountryCode, e.CountryName, e.POIName,
		e.CachedAt, e.ExpiresAt,
	)
	if err != nil {
		return storeErr("put geocode cache entry", err)
	}
	return nil
}

func (r *sqliteGeocodeRepo) InRange(ctx context.Context, box spatial.Box, now int64) ([]models.GeocodeCacheEntry, error) {
	query := `SELECT ` + geocodeColumns + ` FROM geocode_cache
		WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ? AND expires_at > ?
		ORDER BY cached_at ASC`

	rows, err := r.q.QueryContext(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, now)
	if err != nil {
		return nil, storeErr("query geocode cache", err)
	}
	defer rows.Close()

	return collectGeocodeEntries(rows)
}

func (r *sqliteGeocodeRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM geocode_cache WHERE expires_at <= ?", now)
	if err != nil {
		return 0, storeErr("delete expired geocode cache entries", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("count deleted geocode cache entries", err)
	}
	return n, nil
}

func (r *sqliteGeocodeRepo) Clear(ctx context.Context) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM geocode_cache"); err != nil {
		return storeErr("clear geocode cache", err)
	}
	return nil
}

func (r *sqliteGeocodeRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM geocode_cache").Scan(&count); err != nil {
		return 0, storeErr("count geocode cache entries", err)
	}
	return count, nil
}

func collectGeocodeEntries(rows *sql.Rows) ([]models.GeocodeCacheEntry, error) {
	var entries []models.GeocodeCacheEntry
	for rows.Next() {
		var e models.GeocodeCacheEntry
		err := rows.Scan(
			&e.ID, &e.Latitude, &e.Longitude, &e.FormattedAddress, &e.Street, &e.StreetNumber,
			&e.City, &e.State, &e.PostalCode, &e.CountryCode, &e.CountryName, &e.POIName,
			&e.CachedAt, &e.ExpiresAt,
		)
		if err != nil {
			return nil, storeErr("scan geocode cache entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate geocode cache entries", err)
	}
	return entries, nil
}
