package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

type sqliteTripRepo struct {
	q DBTX
}

const tripColumns = `id, user_id, date, start_time, end_time, origin_visit_id, dest_visit_id,
	distance_meters, primary_mode, deleted, local_version, server_version, created_at, updated_at`

func (r *sqliteTripRepo) Insert(ctx context.Context, t *models.Trip) error {
	query := `INSERT INTO trips (` + tripColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		t.ID, t.UserID, t.Date, t.StartTime, t.EndTime, t.OriginVisitID, t.DestVisitID,
		t.DistanceMeters, t.PrimaryMode, t.Deleted, t.LocalVersion, t.ServerVersion,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert trip", err)
	}
	return nil
}

func (r *sqliteTripRepo) Update(ctx context.Context, t *models.Trip) error {
	query := `UPDATE trips SET
		date = ?, start_time = ?, end_time = ?, origin_visit_id = ?, dest_visit_id = ?,
		distance_meters = ?, primary_mode = ?,
		local_version = local_version + 1, server_version = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query,
		t.Date, t.StartTime, t.EndTime, t.OriginVisitID, t.DestVisitID,
		t.DistanceMeters, t.PrimaryMode, t.ServerVersion, t.UpdatedAt,
		t.ID, t.UserID,
	)
	if err != nil {
		return storeErr("update trip", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteTripRepo) GetByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE id = ? AND user_id = ? AND deleted = 0`

	t, err := scanTrip(r.q.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get trip", err)
	}
	return t, nil
}

func (r *sqliteTripRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE user_id = ? AND start_time >= ? AND start_time <= ? AND deleted = 0
		ORDER BY start_time ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, storeErr("query trips", err)
	}
	defer rows.Close()

	return collectTrips(rows)
}

func (r *sqliteTripRepo) List(ctx context.Context, userID string, filter models.TripFilter) ([]models.Trip, int64, error) {
	conditions := []string{"user_id = ?", "deleted = 0"}
	args := []interface{}{userID}

	if filter.StartTime > 0 {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count trips", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `SELECT ` + tripColumns + ` FROM trips` + where +
		` ORDER BY start_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr("query trips", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows)
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func (r *sqliteTripRepo) SoftDelete(ctx context.Context, userID, id string) error {
	query := `UPDATE trips
		SET deleted = 1, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storeErr("soft-delete trip", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteTripRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM trips WHERE user_id = ? AND deleted = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count trips", err)
	}
	return count, nil
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID, &t.UserID, &t.Date, &t.StartTime, &t.EndTime, &t.OriginVisitID, &t.DestVisitID,
		&t.DistanceMeters, &t.PrimaryMode, &t.Deleted, &t.LocalVersion, &t.ServerVersion,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrips(rows *sql.Rows) ([]models.Trip, error) {
	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, storeErr("scan trip", err)
		}
		trips = append(trips, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate trips", err)
	}
	return trips, nil
}
