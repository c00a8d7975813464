package models

// Visit categories
const (
	CategoryHome          = "HOME"
	CategoryWork          = "WORK"
	CategoryFood          = "FOOD"
	CategoryShopping      = "SHOPPING"
	CategoryFitness       = "FITNESS"
	CategoryEntertainment = "ENTERTAINMENT"
	CategoryTravel        = "TRAVEL"
	CategoryHealthcare    = "HEALTHCARE"
	CategoryEducation     = "EDUCATION"
	CategoryReligious     = "RELIGIOUS"
	CategorySocial        = "SOCIAL"
	CategoryOutdoor       = "OUTDOOR"
	CategoryService       = "SERVICE"
	CategoryOther         = "OTHER"
)

// Category confidence levels
const (
	ConfidenceHigh    = "HIGH"
	ConfidenceMedium  = "MEDIUM"
	ConfidenceLow     = "LOW"
	ConfidenceUserSet = "USER_SET"
)

// Visit significance, derived from cumulative visit frequency at the same
// frequent place.
const (
	SignificancePrimary    = "PRIMARY"
	SignificanceFrequent   = "FREQUENT"
	SignificanceOccasional = "OCCASIONAL"
	SignificanceRare       = "RARE"
)

// PlaceVisit represents a detected or manually created stay at a location.
type PlaceVisit struct {
	ID        string  `json:"id" db:"id"`
	UserID    string  `json:"userId" db:"user_id"`
	StartTime int64   `json:"startTime" db:"start_time"` // Unix seconds
	EndTime   int64   `json:"endTime" db:"end_time"`
	CenterLat float64 `json:"centerLat" db:"center_lat"`
	CenterLon float64 `json:"centerLon" db:"center_lon"`
	RadiusM   float64 `json:"radiusMeters" db:"radius_meters"`

	// Resolved address, filled by geocoding enrichment. All optional: a
	// provider failure leaves them empty without blocking visit creation.
	Address     string `json:"address,omitempty" db:"address"`
	POIName     string `json:"poiName,omitempty" db:"poi_name"`
	City        string `json:"city,omitempty" db:"city"`
	CountryCode string `json:"countryCode,omitempty" db:"country_code"`

	Category           string `json:"category" db:"category"`
	CategoryConfidence string `json:"categoryConfidence" db:"category_confidence"`
	Significance       string `json:"significance" db:"significance"`

	Favorite bool   `json:"favorite" db:"favorite"`
	Label    string `json:"label,omitempty" db:"label"`
	Notes    string `json:"notes,omitempty" db:"notes"`

	// FrequentPlaceID links visits at the same physical place across time.
	FrequentPlaceID *string `json:"frequentPlaceId,omitempty" db:"frequent_place_id"`

	Deleted bool `json:"deleted" db:"deleted"`

	LocalVersion  int64  `json:"localVersion" db:"local_version"`
	ServerVersion *int64 `json:"serverVersion,omitempty" db:"server_version"`
	CreatedAt     int64  `json:"createdAt" db:"created_at"`
	UpdatedAt     int64  `json:"updatedAt" db:"updated_at"`
}

// DurationSeconds returns the dwell time of the visit.
func (v *PlaceVisit) DurationSeconds() int64 {
	return v.EndTime - v.StartTime
}

// VisitFilter represents filter parameters for querying place visits.
type VisitFilter struct {
	StartTime    int64  `form:"startTime"`
	EndTime      int64  `form:"endTime"`
	Category     string `form:"category"`
	Significance string `form:"significance"`
	MinDuration  int64  `form:"minDuration"` // seconds
	FavoriteOnly bool   `form:"favoriteOnly"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}
