package models

// Trip groups the visits and segments of one journey day into an
// origin-destination pair.
type Trip struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"userId" db:"user_id"`
	Date      string `json:"date" db:"date"` // YYYY-MM-DD
	StartTime int64  `json:"startTime" db:"start_time"`
	EndTime   int64  `json:"endTime" db:"end_time"`

	OriginVisitID *string `json:"originVisitId,omitempty" db:"origin_visit_id"`
	DestVisitID   *string `json:"destVisitId,omitempty" db:"dest_visit_id"`

	DistanceMeters float64 `json:"distanceMeters" db:"distance_meters"`
	PrimaryMode    string  `json:"primaryMode,omitempty" db:"primary_mode"`

	Deleted bool `json:"deleted" db:"deleted"`

	LocalVersion  int64  `json:"localVersion" db:"local_version"`
	ServerVersion *int64 `json:"serverVersion,omitempty" db:"server_version"`
	CreatedAt     int64  `json:"createdAt" db:"created_at"`
	UpdatedAt     int64  `json:"updatedAt" db:"updated_at"`
}

// TripFilter represents filter parameters for querying trips.
type TripFilter struct {
	StartTime int64  `form:"startTime"`
	EndTime   int64  `form:"endTime"`
	Date      string `form:"date"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
