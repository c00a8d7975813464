package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

type sqliteSampleRepo struct {
	q DBTX
}

const sampleColumns = `id, user_id, device_id, timestamp, latitude, longitude, altitude,
	accuracy, speed, bearing, source, trip_id, deleted,
	local_version, server_version, created_at, updated_at`

func (r *sqliteSampleRepo) Insert(ctx context.Context, s *models.LocationSample) error {
	query := `INSERT INTO location_samples (` + sampleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		s.ID, s.UserID, s.DeviceID, s.Timestamp, s.Latitude, s.Longitude, s.Altitude,
		s.Accuracy, s.Speed, s.Bearing, s.Source, s.TripID, s.Deleted,
		s.LocalVersion, s.ServerVersion, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert location sample", err)
	}
	return nil
}

func (r *sqliteSampleRepo) GetByID(ctx context.Context, userID, id string) (*models.LocationSample, error) {
	query := `SELECT ` + sampleColumns + ` FROM location_samples
		WHERE id = ? AND user_id = ? AND deleted = 0`

	s, err := scanSample(r.q.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get location sample", err)
	}
	return s, nil
}

func (r *sqliteSampleRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.LocationSample, error) {
	query := `SELECT ` + sampleColumns + ` FROM location_samples
		WHERE user_id = ? AND timestamp >= ? AND timestamp <= ? AND deleted = 0
		ORDER BY timestamp ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, storeErr("query location samples", err)
	}
	defer rows.Close()

	return collectSamples(rows)
}

func (r *sqliteSampleRepo) List(ctx context.Context, userID string, filter models.SampleFilter) ([]models.LocationSample, int64, error) {
	conditions := []string{"user_id = ?", "deleted = 0"}
	args := []interface{}{userID}

	if filter.StartTime > 0 {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM location_samples"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count location samples", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `SELECT ` + sampleColumns + ` FROM location_samples` + where +
		` ORDER BY timestamp DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr("query location samples", err)
	}
	defer rows.Close()

	samples, err := collectSamples(rows)
	if err != nil {
		return nil, 0, err
	}
	return samples, total, nil
}

func (r *sqliteSampleRepo) AssignTrip(ctx context.Context, userID string, sampleIDs []string, tripID string) error {
	if len(sampleIDs) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(sampleIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, 0, len(sampleIDs)+2)
	args = append(args, tripID, userID)
	for _, id := range sampleIDs {
		args = append(args, id)
	}

	query := `UPDATE location_samples
		SET trip_id = ?, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE user_id = ? AND id IN (` + placeholders + `)`

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return storeErr("assign trip to samples", err)
	}
	return nil
}

func (r *sqliteSampleRepo) SoftDelete(ctx context.Context, userID, id string) error {
	query := `UPDATE location_samples
		SET deleted = 1, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storeErr("soft-delete location sample", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteSampleRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM location_samples WHERE user_id = ? AND deleted = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count location samples", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSample(row rowScanner) (*models.LocationSample, error) {
	var s models.LocationSample
	err := row.Scan(
		&s.ID, &s.UserID, &s.DeviceID, &s.Timestamp, &s.Latitude, &s.Longitude, &s.Altitude,
		&s.Accuracy, &s.Speed, &s.Bearing, &s.Source, &s.TripID, &s.Deleted,
		&s.LocalVersion, &s.ServerVersion, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSamples(rows *sql.Rows) ([]models.LocationSample, error) {
	var samples []models.LocationSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, storeErr("scan location sample", err)
		}
		samples = append(samples, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate location samples", err)
	}
	return samples, nil
}

// normalizePage clamps pagination the same way across repositories.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
