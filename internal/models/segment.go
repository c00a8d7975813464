package models

// Transport modes
const (
	ModeWalk    = "WALK"
	ModeBike    = "BIKE"
	ModeCar     = "CAR"
	ModeTrain   = "TRAIN"
	ModePlane   = "PLANE"
	ModeBoat    = "BOAT" // never auto-assigned, user-set only
	ModeUnknown = "UNKNOWN"
)

// PathPoint is one coordinate of a segment's simplified path.
type PathPoint struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// RouteSegment represents a movement interval between two visits (or
// open-ended at either side). Immutable after creation except for deletion.
type RouteSegment struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"userId" db:"user_id"`
	StartTime int64  `json:"startTime" db:"start_time"` // Unix seconds
	EndTime   int64  `json:"endTime" db:"end_time"`

	FromVisitID *string `json:"fromVisitId,omitempty" db:"from_visit_id"`
	ToVisitID   *string `json:"toVisitId,omitempty" db:"to_visit_id"`

	// Path is the lossy Douglas-Peucker reduction of the raw sample track;
	// the full sample ids stay linked for lossless recomputation.
	Path []PathPoint `json:"path,omitempty" db:"-"`

	Mode           string  `json:"mode" db:"mode"`
	DistanceMeters float64 `json:"distanceMeters" db:"distance_meters"`
	AvgSpeedMPS    float64 `json:"avgSpeedMps" db:"avg_speed_mps"`
	Confidence     float64 `json:"confidence" db:"confidence"` // 0~1

	Deleted bool `json:"deleted" db:"deleted"`

	LocalVersion  int64  `json:"localVersion" db:"local_version"`
	ServerVersion *int64 `json:"serverVersion,omitempty" db:"server_version"`
	CreatedAt     int64  `json:"createdAt" db:"created_at"`
	UpdatedAt     int64  `json:"updatedAt" db:"updated_at"`
}

// SegmentFilter represents filter parameters for querying route segments.
type SegmentFilter struct {
	StartTime int64  `form:"startTime"`
	EndTime   int64  `form:"endTime"`
	Mode      string `form:"mode"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
