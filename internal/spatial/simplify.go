package spatial

import "math"

// Simplify reduces path density using the Ramer-Douglas-Peucker algorithm,
// bounding perpendicular deviation from the original track to
// toleranceMeters. Applying it twice with the same tolerance is a no-op.
func Simplify(points []Point, toleranceMeters float64) []Point {
	if len(points) < 3 {
		return points
	}

	// Find the point with maximum distance from the end-to-end chord.
	maxDist := 0.0
	maxIndex := 0

	for i := 1; i < len(points)-1; i++ {
		dist := perpendicularDistance(points[i], points[0], points[len(points)-1])
		if dist > maxDist {
			maxDist = dist
			maxIndex = i
		}
	}

	if maxDist > toleranceMeters {
		left := Simplify(points[:maxIndex+1], toleranceMeters)
		right := Simplify(points[maxIndex:], toleranceMeters)

		// Combine, dropping the duplicated split point.
		result := make([]Point, len(left)+len(right)-1)
		copy(result, left)
		copy(result[len(left):], right[1:])
		return result
	}

	return []Point{points[0], points[len(points)-1]}
}

// perpendicularDistance calculates the perpendicular distance in meters from
// a point to the line through lineStart and lineEnd, using a local planar
// approximation that is accurate at simplification scales.
func perpendicularDistance(point, lineStart, lineEnd Point) float64 {
	x0, y0 := point.Lat, point.Lon
	x1, y1 := lineStart.Lat, lineStart.Lon
	x2, y2 := lineEnd.Lat, lineEnd.Lon

	num := math.Abs((y2-y1)*x0 - (x2-x1)*y0 + x2*y1 - y2*x1)
	den := math.Sqrt((y2-y1)*(y2-y1) + (x2-x1)*(x2-x1))

	if den == 0 {
		dist, err := Distance(point, lineStart)
		if err != nil {
			return 0
		}
		return dist
	}

	metersPerDegree := 111320.0
	return (num / den) * metersPerDegree
}
