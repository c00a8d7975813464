package spatial

import "math"

// Box is a latitude/longitude bounding box used as a cheap rectangular
// prefilter before exact distance refinement.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point falls inside the box.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// poleClampLat is the latitude beyond which the longitude span degenerates
// to the full circle instead of scaling by 1/cos(lat).
const poleClampLat = 89.9

// BoundingBox returns the box around center whose edges are radiusMeters
// away. The angular radius converts to latitude degrees directly and to
// longitude degrees scaled by 1/cos(lat); near the poles the scaling would
// blow up, so the longitude span clamps to the full circle there. A box
// that would cross the antimeridian degenerates to the full span too.
func BoundingBox(center Point, radiusMeters float64) (Box, error) {
	if err := center.Validate(); err != nil {
		return Box{}, err
	}

	latDelta := (radiusMeters / EarthRadiusMeters) * 180 / math.Pi

	box := Box{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
	}

	if math.Abs(center.Lat) >= poleClampLat {
		box.MinLon = -180
		box.MaxLon = 180
		return box, nil
	}

	lonDelta := latDelta / math.Cos(center.Lat*math.Pi/180)
	if lonDelta >= 180 {
		box.MinLon = -180
		box.MaxLon = 180
		return box, nil
	}

	box.MinLon = center.Lon - lonDelta
	box.MaxLon = center.Lon + lonDelta
	if box.MinLon < -180 || box.MaxLon > 180 {
		// A box crossing the antimeridian is not one longitude interval,
		// which is all Contains and the range queries can express. Fall
		// back to the full span and let distance refinement filter.
		box.MinLon = -180
		box.MaxLon = 180
	}
	return box, nil
}
