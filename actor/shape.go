package actor

import (
	"math"

	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ColliderKind tags the shape held by a Collider
type ColliderKind uint8

const (
	ColliderBox ColliderKind = iota
	ColliderPlane
)

func (k ColliderKind) String() string {
	switch k {
	case ColliderBox:
		return "box"
	case ColliderPlane:
		return "plane"
	}
	return "unknown"
}

// Collider is the collision shape of a body, expressed in the body's local frame.
// The set of shapes is closed: a box given by its half-extents, or an infinite plane
// {x : Direction·x = Offset}. Colliders are immutable once built.
type Collider struct {
	kind        ColliderKind
	halfExtents spatial.Position
	direction   spatial.Position
	offset      float64
}

// NewBox creates a box centered on the body origin.
func NewBox(halfExtents spatial.Position) Collider {
	for i, h := range halfExtents {
		if !(h > 0) || math.IsInf(h, 0) {
			panic(errors.Errorf("box half extent %d must be positive and finite, got %v", i, h))
		}
	}
	return Collider{kind: ColliderBox, halfExtents: halfExtents}
}

// NewPlane creates an infinite plane. The direction is normalized; points with
// direction·x > offset are outside the plane.
func NewPlane(direction spatial.Position, offset float64) Collider {
	if !direction.IsFinite() || direction.LenSqr() == 0 {
		panic(errors.Errorf("plane direction must be a finite non-zero vector, got %v", direction))
	}
	return Collider{kind: ColliderPlane, direction: direction.Normalize(), offset: offset}
}

func (c Collider) Kind() ColliderKind {
	return c.kind
}

func (c Collider) HalfExtents() spatial.Position {
	return c.halfExtents
}

func (c Collider) Direction() spatial.Position {
	return c.direction
}

func (c Collider) Offset() float64 {
	return c.offset
}

// Corners returns the eight box corners in local space. Bit 0 of the index selects the
// sign of x, bit 1 of y and bit 2 of z, so corner 0 is (-x, -y, -z).
func (c Collider) Corners() [8]spatial.Position {
	var corners [8]spatial.Position
	h := c.halfExtents
	for i := range corners {
		corner := spatial.Position{-h[0], -h[1], -h[2]}
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corner[axis] = h[axis]
			}
		}
		corners[i] = corner
	}
	return corners
}

// SignedDistance is the distance of a local point above the plane, negative below it.
func (c Collider) SignedDistance(local spatial.Position) float64 {
	return c.direction.Dot(local) - c.offset
}

// Support returns the local point of the box furthest along direction
func (c Collider) Support(direction spatial.Position) spatial.Position {
	h := c.halfExtents
	for i := range h {
		if direction[i] < 0 {
			h[i] = -h[i]
		}
	}
	return h
}

// WorldAABB computes the world space bounds of the collider placed at frame.
// Planes are unbounded.
func (c Collider) WorldAABB(frame spatial.Space) AABB {
	if c.kind == ColliderPlane {
		inf := math.Inf(1)
		return AABB{
			Min: spatial.Position{-inf, -inf, -inf},
			Max: spatial.Position{inf, inf, inf},
		}
	}

	corners := c.Corners()
	worldCorner := frame.Leave(corners[0])
	min := worldCorner
	max := worldCorner

	for i := 1; i < len(corners); i++ {
		worldCorner = frame.Leave(corners[i])

		min[0] = math.Min(min[0], worldCorner[0])
		min[1] = math.Min(min[1], worldCorner[1])
		min[2] = math.Min(min[2], worldCorner[2])

		max[0] = math.Max(max[0], worldCorner[0])
		max[1] = math.Max(max[1], worldCorner[1])
		max[2] = math.Max(max[2], worldCorner[2])
	}

	return AABB{Min: min, Max: max}
}

// Inertia returns the diagonal of the local inertia tensor for the given mass.
func (c Collider) Inertia(mass float64) mgl64.Mat3 {
	if c.kind == ColliderPlane {
		return mgl64.Mat3{}
	}

	x := c.halfExtents[0] * 2
	y := c.halfExtents[1] * 2
	z := c.halfExtents[2] * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0
	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}
