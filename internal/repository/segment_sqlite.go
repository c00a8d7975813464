package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

type sqliteSegmentRepo struct {
	q DBTX
}

const segmentColumns = `id, user_id, start_time, end_time, from_visit_id, to_visit_id,
	mode, distance_meters, avg_speed_mps, confidence, deleted,
	local_version, server_version, created_at, updated_at`

func (r *sqliteSegmentRepo) Insert(ctx context.Context, seg *models.RouteSegment) error {
	query := `INSERT INTO route_segments (` + segmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		seg.ID, seg.UserID, seg.StartTime, seg.EndTime, seg.FromVisitID, seg.ToVisitID,
		seg.Mode, seg.DistanceMeters, seg.AvgSpeedMPS, seg.Confidence, seg.Deleted,
		seg.LocalVersion, seg.ServerVersion, seg.CreatedAt, seg.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert route segment", err)
	}

	for i, p := range seg.Path {
		_, err := r.q.ExecContext(ctx,
			"INSERT INTO segment_path_points (segment_id, seq, latitude, longitude) VALUES (?, ?, ?, ?)",
			seg.ID, i, p.Latitude, p.Longitude,
		)
		if err != nil {
			return storeErr("insert segment path point", err)
		}
	}
	return nil
}

func (r *sqliteSegmentRepo) UpdateMode(ctx context.Context, userID, id, mode string, confidence float64) error {
	query := `UPDATE route_segments
		SET mode = ?, confidence = ?, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE id = ? AND user_id = ? AND deleted = 0`

	res, err := r.q.ExecContext(ctx, query, mode, confidence, id, userID)
	if err != nil {
		return storeErr("update segment mode", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteSegmentRepo) GetByID(ctx context.Context, userID, id string) (*models.RouteSegment, error) {
	query := `SELECT ` + segmentColumns + ` FROM route_segments
		WHERE id = ? AND user_id = ? AND deleted = 0`

	seg, err := scanSegment(r.q.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get route segment", err)
	}

	path, err := r.loadPath(ctx, seg.ID)
	if err != nil {
		return nil, err
	}
	seg.Path = path
	return seg, nil
}

func (r *sqliteSegmentRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.RouteSegment, error) {
	query := `SELECT ` + segmentColumns + ` FROM route_segments
		WHERE user_id = ? AND start_time >= ? AND start_time <= ? AND deleted = 0
		ORDER BY start_time ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, storeErr("query route segments", err)
	}
	defer rows.Close()

	return collectSegments(rows)
}

func (r *sqliteSegmentRepo) List(ctx context.Context, userID string, filter models.SegmentFilter) ([]models.RouteSegment, int64, error) {
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
	if filter.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, filter.Mode)
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM route_segments"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count route segments", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `SELECT ` + segmentColumns + ` FROM route_segments` + where +
		` ORDER BY start_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr("query route segments", err)
	}
	defer rows.Close()

	segments, err := collectSegments(rows)
	if err != nil {
		return nil, 0, err
	}
	return segments, total, nil
}

func (r *sqliteSegmentRepo) SoftDelete(ctx context.Context, userID, id string) error {
	query := `UPDATE route_segments
		SET deleted = 1, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storeErr("soft-delete route segment", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteSegmentRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM route_segments WHERE user_id = ? AND deleted = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count route segments", err)
	}
	return count, nil
}

func (r *sqliteSegmentRepo) LinkSamples(ctx context.Context, segmentID string, sampleIDs []string) error {
	for i, sampleID := range sampleIDs {
		_, err := r.q.ExecContext(ctx,
			"INSERT OR IGNORE INTO segment_samples (segment_id, sample_id, seq) VALUES (?, ?, ?)",
			segmentID, sampleID, i,
		)
		if err != nil {
			return storeErr("link segment samples", err)
		}
	}
	return nil
}

func (r *sqliteSegmentRepo) GetSampleIDs(ctx context.Context, segmentID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT sample_id FROM segment_samples WHERE segment_id = ? ORDER BY seq ASC", segmentID)
	if err != nil {
		return nil, storeErr("query segment samples", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan segment sample id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sqliteSegmentRepo) loadPath(ctx context.Context, segmentID string) ([]models.PathPoint, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT latitude, longitude FROM segment_path_points WHERE segment_id = ? ORDER BY seq ASC",
		segmentID)
	if err != nil {
		return nil, storeErr("query segment path", err)
	}
	defer rows.Close()

	var path []models.PathPoint
	for rows.Next() {
		var p models.PathPoint
		if err := rows.Scan(&p.Latitude, &p.Longitude); err != nil {
			return nil, storeErr("scan segment path point", err)
		}
		path = append(path, p)
	}
	return path, rows.Err()
}

func scanSegment(row rowScanner) (*models.RouteSegment, error) {
	var seg models.RouteSegment
	err := row.Scan(
		&seg.ID, &seg.UserID, &seg.StartTime, &seg.EndTime, &seg.FromVisitID, &seg.ToVisitID,
		&seg.Mode, &seg.DistanceMeters, &seg.AvgSpeedMPS, &seg.Confidence, &seg.Deleted,
		&seg.LocalVersion, &seg.ServerVersion, &seg.CreatedAt, &seg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &seg, nil
}

func collectSegments(rows *sql.Rows) ([]models.RouteSegment, error) {
	var segments []models.RouteSegment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, storeErr("scan route segment", err)
		}
		segments = append(segments, *seg)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate route segments", err)
	}
	return segments, nil
}
