// Package geometry provides the shared spatial primitives for go-egress:
// 3D positions, bearings, and floor resolution.
package geometry

import "math"

// Vector3 is a position in building coordinates.
// Y is vertical: the floor index is derived from Y and the floor height.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the straight-line 3D distance between two points.
func Distance(a, b Vector3) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlanarDistance returns the distance in the horizontal (X,Z) plane,
// ignoring floor separation.
func PlanarDistance(a, b Vector3) float64 {
	dx := b.X - a.X
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Bearing returns the compass bearing in degrees [0, 360) of travel
// from a to b in the horizontal plane. 0 is +Z, 90 is +X.
func Bearing(from, to Vector3) float64 {
	deg := math.Atan2(to.X-from.X, to.Z-from.Z) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// TurnAngle returns the signed change in degrees (-180, 180] needed to
// rotate from heading to bearing. Positive is a right turn.
func TurnAngle(heading, bearing float64) float64 {
	diff := math.Mod(bearing-heading, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// FloorOf resolves the floor index of a position given the configured
// floor height.
func FloorOf(pos Vector3, floorHeight float64) int {
	return int(math.Floor(pos.Y / floorHeight))
}

// Lerp performs linear interpolation between two values.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to a range.
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
