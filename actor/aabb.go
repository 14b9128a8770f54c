package actor

import "github.com/Jim-Eckerlein/constraints-solver/spatial"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min spatial.Position
	Max spatial.Position
}

// Overlaps checks if two AABBs overlap
func (a AABB) Overlaps(other AABB) bool {
	// AABBs overlap if they overlap on all three axes
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}
