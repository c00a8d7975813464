package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

func TestDistance(t *testing.T) {
	// Berlin TV tower to Brandenburg Gate, roughly 2.6 km.
	a := Point{Lat: 52.520815, Lon: 13.409419}
	b := Point{Lat: 52.516275, Lon: 13.377704}

	d, err := Distance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2200, d, 200)

	same, err := Distance(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 0, same, 0.001)
}

func TestDistanceInvalidCoordinates(t *testing.T) {
	valid := Point{Lat: 52.5, Lon: 13.4}

	cases := []struct {
		name string
		p    Point
	}{
		{"nan latitude", Point{Lat: math.NaN(), Lon: 0}},
		{"inf longitude", Point{Lat: 0, Lon: math.Inf(1)}},
		{"latitude out of range", Point{Lat: 91, Lon: 0}},
		{"longitude out of range", Point{Lat: 0, Lon: -181}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Distance(valid, tc.p)
			assert.ErrorIs(t, err, models.ErrInvalidCoordinate)

			_, err = Distance(tc.p, valid)
			assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
		})
	}
}

func TestCentroid(t *testing.T) {
	points := []Point{
		{Lat: 52.0, Lon: 13.0},
		{Lat: 52.2, Lon: 13.2},
		{Lat: 52.4, Lon: 13.4},
	}
	c := Centroid(points)
	assert.InDelta(t, 52.2, c.Lat, 1e-9)
	assert.InDelta(t, 13.2, c.Lon, 1e-9)

	assert.Equal(t, Point{}, Centroid(nil))
}

func TestBearing(t *testing.T) {
	a := Point{Lat: 52.5, Lon: 13.4}

	north := Bearing(a, Point{Lat: 53.5, Lon: 13.4})
	assert.InDelta(t, 0, north, 0.5)

	east := Bearing(a, Point{Lat: 52.5, Lon: 14.4})
	assert.InDelta(t, 90, east, 1.0)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	center := Point{Lat: 52.5, Lon: 13.4}
	box, err := BoundingBox(center, 500)
	require.NoError(t, err)

	assert.True(t, box.Contains(center))

	// Points just inside the radius in each cardinal direction must fall
	// inside the prefilter box.
	for _, bearingTarget := range []Point{
		{Lat: center.Lat + 0.004, Lon: center.Lon},
		{Lat: center.Lat - 0.004, Lon: center.Lon},
		{Lat: center.Lat, Lon: center.Lon + 0.006},
		{Lat: center.Lat, Lon: center.Lon - 0.006},
	} {
		d, err := Distance(center, bearingTarget)
		require.NoError(t, err)
		require.Less(t, d, 500.0)
		assert.True(t, box.Contains(bearingTarget), "point at %v m should be inside", d)
	}

	assert.False(t, box.Contains(Point{Lat: 52.6, Lon: 13.4}))
}

func TestBoundingBoxNearPoles(t *testing.T) {
	box, err := BoundingBox(Point{Lat: 89.95, Lon: 0}, 1000)
	require.NoError(t, err)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.LessOrEqual(t, box.MaxLat, 90.0)
}

func TestBoundingBoxLatClamp(t *testing.T) {
	box, err := BoundingBox(Point{Lat: 89.999, Lon: 10}, 50000)
	require.NoError(t, err)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBoxAntimeridian(t *testing.T) {
	// A box that would cross lon 180 falls back to the full span so the
	// single-interval prefilter still sees points on the far side.
	box, err := BoundingBox(Point{Lat: 0, Lon: 179.9999}, 500)
	require.NoError(t, err)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.True(t, box.Contains(Point{Lat: 0, Lon: -179.9999}))

	box, err = BoundingBox(Point{Lat: 0, Lon: -179.9999}, 500)
	require.NoError(t, err)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
}

func TestBoundingBoxInvalidCenter(t *testing.T) {
	_, err := BoundingBox(Point{Lat: math.NaN(), Lon: 0}, 100)
	assert.ErrorIs(t, err, models.ErrInvalidCoordinate)
}

func TestSimplify(t *testing.T) {
	// A dogleg: the vertex deviates kilometers from the end-to-end chord and
	// must survive; the point a few meters off its local chord must go.
	points := []Point{
		{Lat: 52.500, Lon: 13.400},
		{Lat: 52.505, Lon: 13.4101}, // ~5m off the chord to the dogleg vertex
		{Lat: 52.510, Lon: 13.420},  // dogleg vertex
		{Lat: 52.520, Lon: 13.400},
	}

	simplified := Simplify(points, 25)
	assert.Len(t, simplified, 3)
	assert.Equal(t, points[0], simplified[0])
	assert.Equal(t, points[2], simplified[1])
	assert.Equal(t, points[3], simplified[2])
}

func TestSimplifyIdempotent(t *testing.T) {
	points := []Point{
		{Lat: 52.500, Lon: 13.400},
		{Lat: 52.505, Lon: 13.415},
		{Lat: 52.510, Lon: 13.402},
		{Lat: 52.515, Lon: 13.420},
		{Lat: 52.520, Lon: 13.400},
	}

	once := Simplify(points, 25)
	twice := Simplify(once, 25)
	assert.Equal(t, once, twice)
}

func TestSimplifyShortInputs(t *testing.T) {
	two := []Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	assert.Equal(t, two, Simplify(two, 25))
	assert.Empty(t, Simplify(nil, 25))
}

func TestPathLength(t *testing.T) {
	points := []Point{
		{Lat: 52.500, Lon: 13.400},
		{Lat: 52.510, Lon: 13.400},
		{Lat: 52.520, Lon: 13.400},
	}
	total := PathLength(points)
	// Each hop is ~1.11 km of latitude.
	assert.InDelta(t, 2224, total, 30)

	assert.Zero(t, PathLength(points[:1]))
}
