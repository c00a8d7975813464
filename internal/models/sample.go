package models

// Sample sources
const (
	SourceGPS               = "GPS"
	SourceNetwork           = "NETWORK"
	SourceSignificantChange = "SIGNIFICANT_CHANGE"
	SourceVisit             = "VISIT"
)

// LocationSample represents a single raw GPS observation. Samples are
// immutable once recorded, except for their trip assignment, and are
// soft-deleted rather than purged so sync history stays replayable.
type LocationSample struct {
	ID        string  `json:"id" db:"id"`
	UserID    string  `json:"userId" db:"user_id"`
	DeviceID  string  `json:"deviceId" db:"device_id"`
	Timestamp int64   `json:"timestamp" db:"timestamp"` // Unix seconds
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	Altitude *float64 `json:"altitude,omitempty" db:"altitude"`
	Accuracy float64  `json:"accuracy" db:"accuracy"` // horizontal, meters
	Speed    *float64 `json:"speed,omitempty" db:"speed"`
	Bearing  *float64 `json:"bearing,omitempty" db:"bearing"`
	Source   string   `json:"source" db:"source"`

	TripID  *string `json:"tripId,omitempty" db:"trip_id"`
	Deleted bool    `json:"deleted" db:"deleted"`

	LocalVersion  int64  `json:"localVersion" db:"local_version"`
	ServerVersion *int64 `json:"serverVersion,omitempty" db:"server_version"`
	CreatedAt     int64  `json:"createdAt" db:"created_at"`
	UpdatedAt     int64  `json:"updatedAt" db:"updated_at"`
}

// SampleFilter represents filter parameters for querying location samples.
type SampleFilter struct {
	StartTime int64  `form:"startTime"`
	EndTime   int64  `form:"endTime"`
	DeviceID  string `form:"deviceId"`
	Source    string `form:"source"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
