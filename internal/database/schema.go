package database

import (
	"database/sql"
	"fmt"
)

// schema is the full logical layout: samples, visits, visit-sample links,
// route segments, segment-sample links, simplified-path points, geocoding
// cache entries and trips. Every user-owned table is soft-delete-aware and
// carries local/server sync versions.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS location_samples (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		device_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		altitude REAL,
		accuracy REAL NOT NULL DEFAULT 0,
		speed REAL,
		bearing REAL,
		source TEXT NOT NULL DEFAULT 'GPS',
		trip_id TEXT,
		deleted INTEGER NOT NULL DEFAULT 0,
		local_version INTEGER NOT NULL DEFAULT 1,
		server_version INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_samples_user_time ON location_samples(user_id, timestamp)`,

	`CREATE TABLE IF NOT EXISTS place_visits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		center_lat REAL NOT NULL,
		center_lon REAL NOT NULL,
		radius_meters REAL NOT NULL DEFAULT 0,
		address TEXT NOT NULL DEFAULT '',
		poi_name TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		country_code TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'OTHER',
		category_confidence TEXT NOT NULL DEFAULT 'LOW',
		significance TEXT NOT NULL DEFAULT 'RARE',
		favorite INTEGER NOT NULL DEFAULT 0,
		label TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		frequent_place_id TEXT,
		deleted INTEGER NOT NULL DEFAULT 0,
		local_version INTEGER NOT NULL DEFAULT 1,
		server_version INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_user_time ON place_visits(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_user_center ON place_visits(user_id, center_lat, center_lon)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_frequent_place ON place_visits(user_id, frequent_place_id)`,

	`CREATE TABLE IF NOT EXISTS visit_samples (
		visit_id TEXT NOT NULL,
		sample_id TEXT NOT NULL,
		PRIMARY KEY (visit_id, sample_id)
	)`,

	`CREATE TABLE IF NOT EXISTS route_segments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		from_visit_id TEXT,
		to_visit_id TEXT,
		mode TEXT NOT NULL DEFAULT 'UNKNOWN',
		distance_meters REAL NOT NULL DEFAULT 0,
		avg_speed_mps REAL NOT NULL DEFAULT 0,
		confidence REAL NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		local_version INTEGER NOT NULL DEFAULT 1,
		server_version INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_segments_user_time ON route_segments(user_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS segment_samples (
		segment_id TEXT NOT NULL,
		sample_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		PRIMARY KEY (segment_id, sample_id)
	)`,

	`CREATE TABLE IF NOT EXISTS segment_path_points (
		segment_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		PRIMARY KEY (segment_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS geocode_cache (
		id TEXT PRIMARY KEY,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		formatted_address TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		street_number TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		country_code TEXT NOT NULL DEFAULT '',
		country_name TEXT NOT NULL DEFAULT '',
		poi_name TEXT NOT NULL DEFAULT '',
		cached_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_geocode_latlon ON geocode_cache(latitude, longitude)`,

	`CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		origin_visit_id TEXT,
		dest_visit_id TEXT,
		distance_meters REAL NOT NULL DEFAULT 0,
		primary_mode TEXT NOT NULL DEFAULT '',
		deleted INTEGER NOT NULL DEFAULT 0,
		local_version INTEGER NOT NULL DEFAULT 1,
		server_version INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trips_user_time ON trips(user_id, start_time)`,
}

// Migrate applies the schema. Statements are idempotent, so re-running on an
// existing database is safe.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
