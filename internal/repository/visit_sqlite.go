package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

type sqliteVisitRepo struct {
	q DBTX
}

const visitColumns = `id, user_id, start_time, end_time, center_lat, center_lon, radius_meters,
	address, poi_name, city, country_code, category, category_confidence, significance,
	favorite, label, notes, frequent_place_id, deleted,
	local_version, server_version, created_at, updated_at`

func (r *sqliteVisitRepo) Insert(ctx context.Context, v *models.PlaceVisit) error {
	query := `INSERT INTO place_visits (` + visitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.q.ExecContext(ctx, query,
		v.ID, v.UserID, v.StartTime, v.EndTime, v.CenterLat, v.CenterLon, v.RadiusM,
		v.Address, v.POIName, v.City, v.CountryCode, v.Category, v.CategoryConfidence, v.Significance,
		v.Favorite, v.Label, v.Notes, v.FrequentPlaceID, v.Deleted,
		v.LocalVersion, v.ServerVersion, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return storeErr("insert place visit", err)
	}
	return nil
}

func (r *sqliteVisitRepo) Update(ctx context.Context, v *models.PlaceVisit) error {
	query := `UPDATE place_visits SET
		start_time = ?, end_time = ?, center_lat = ?, center_lon = ?, radius_meters = ?,
		address = ?, poi_name = ?, city = ?, country_code = ?,
		category = ?, category_confidence = ?, significance = ?,
		favorite = ?, label = ?, notes = ?, frequent_place_id = ?,
		local_version = local_version + 1, server_version = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query,
		v.StartTime, v.EndTime, v.CenterLat, v.CenterLon, v.RadiusM,
		v.Address, v.POIName, v.City, v.CountryCode,
		v.Category, v.CategoryConfidence, v.Significance,
		v.Favorite, v.Label, v.Notes, v.FrequentPlaceID,
		v.ServerVersion, v.UpdatedAt,
		v.ID, v.UserID,
	)
	if err != nil {
		return storeErr("update place visit", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteVisitRepo) GetByID(ctx context.Context, userID, id string) (*models.PlaceVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM place_visits
		WHERE id = ? AND user_id = ? AND deleted = 0`

	v, err := scanVisit(r.q.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("get place visit", err)
	}
	return v, nil
}

func (r *sqliteVisitRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.PlaceVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM place_visits
		WHERE user_id = ? AND start_time >= ? AND start_time <= ? AND deleted = 0
		ORDER BY start_time ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, storeErr("query place visits", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (r *sqliteVisitRepo) List(ctx context.Context, userID string, filter models.VisitFilter) ([]models.PlaceVisit, int64, error) {
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
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Significance != "" {
		conditions = append(conditions, "significance = ?")
		args = append(args, filter.Significance)
	}
	if filter.MinDuration > 0 {
		conditions = append(conditions, "end_time - start_time >= ?")
		args = append(args, filter.MinDuration)
	}
	if filter.FavoriteOnly {
		conditions = append(conditions, "favorite = 1")
	}

	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM place_visits"+where, args...).Scan(&total); err != nil {
		return nil, 0, storeErr("count place visits", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	query := `SELECT ` + visitColumns + ` FROM place_visits` + where +
		` ORDER BY start_time DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storeErr("query place visits", err)
	}
	defer rows.Close()

	visits, err := collectVisits(rows)
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func (r *sqliteVisitRepo) SoftDelete(ctx context.Context, userID, id string) error {
	query := `UPDATE place_visits
		SET deleted = 1, local_version = local_version + 1, updated_at = strftime('%s','now')
		WHERE id = ? AND user_id = ?`

	res, err := r.q.ExecContext(ctx, query, id, userID)
	if err != nil {
		return storeErr("soft-delete place visit", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *sqliteVisitRepo) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM place_visits WHERE user_id = ? AND deleted = 0", userID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count place visits", err)
	}
	return count, nil
}

func (r *sqliteVisitRepo) LinkSamples(ctx context.Context, visitID string, sampleIDs []string) error {
	for _, sampleID := range sampleIDs {
		_, err := r.q.ExecContext(ctx,
			"INSERT OR IGNORE INTO visit_samples (visit_id, sample_id) VALUES (?, ?)",
			visitID, sampleID,
		)
		if err != nil {
			return storeErr("link visit samples", err)
		}
	}
	return nil
}

func (r *sqliteVisitRepo) GetSampleIDs(ctx context.Context, visitID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT sample_id FROM visit_samples WHERE visit_id = ?", visitID)
	if err != nil {
		return nil, storeErr("query visit samples", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan visit sample id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *sqliteVisitRepo) FindInBox(ctx context.Context, userID string, box spatial.Box) ([]models.PlaceVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM place_visits
		WHERE user_id = ? AND deleted = 0
		AND center_lat BETWEEN ? AND ? AND center_lon BETWEEN ? AND ?
		ORDER BY start_time ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, storeErr("query place visits in box", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (r *sqliteVisitRepo) CountByFrequentPlace(ctx context.Context, userID, frequentPlaceID string) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM place_visits WHERE user_id = ? AND frequent_place_id = ? AND deleted = 0",
		userID, frequentPlaceID,
	).Scan(&count)
	if err != nil {
		return 0, storeErr("count visits by frequent place", err)
	}
	return count, nil
}

func (r *sqliteVisitRepo) UpdateSignificance(ctx context.Context, userID, frequentPlaceID, significance string) error {
	query := `UPDATE place_visits
		SET significance = ?, updated_at = strftime('%s','now')
		WHERE user_id = ? AND frequent_place_id = ? AND deleted = 0`

	if _, err := r.q.ExecContext(ctx, query, significance, userID, frequentPlaceID); err != nil {
		return storeErr("update visit significance", err)
	}
	return nil
}

func scanVisit(row rowScanner) (*models.PlaceVisit, error) {
	var v models.PlaceVisit
	err := row.Scan(
		&v.ID, &v.UserID, &v.StartTime, &v.EndTime, &v.CenterLat, &v.CenterLon, &v.RadiusM,
		&v.Address, &v.POIName, &v.City, &v.CountryCode, &v.Category, &v.CategoryConfidence, &v.Significance,
		&v.Favorite, &v.Label, &v.Notes, &v.FrequentPlaceID, &v.Deleted,
		&v.LocalVersion, &v.ServerVersion, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisits(rows *sql.Rows) ([]models.PlaceVisit, error) {
	var visits []models.PlaceVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, storeErr("scan place visit", err)
		}
		visits = append(visits, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate place visits", err)
	}
	return visits, nil
}
