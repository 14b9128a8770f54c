package spatial

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Space is a rigid transform: an orientation followed by a translation.
// A body's Space maps its local coordinates to world coordinates.
type Space struct {
	Position    Position
	Orientation Orientation
}

// IdentitySpace returns the transform that leaves every point in place.
func IdentitySpace() Space {
	return Space{Orientation: Identity()}
}

// NewSpace builds a transform from a translation and a rotation.
func NewSpace(position Position, orientation Orientation) Space {
	return Space{Position: position, Orientation: orientation}
}

// Leave maps a point from local to world coordinates.
func (s Space) Leave(local Position) Position {
	return s.Orientation.Act(local).Add(s.Position)
}

// Enter maps a point from world to local coordinates.
func (s Space) Enter(world Position) Position {
	return s.Inverse().Leave(world)
}

// LeaveDirection rotates a local direction into world coordinates, ignoring translation.
func (s Space) LeaveDirection(local Position) Position {
	return s.Orientation.Act(local)
}

// EnterDirection rotates a world direction into local coordinates, ignoring translation.
func (s Space) EnterDirection(world Position) Position {
	return s.Orientation.Inverse().Act(world)
}

// Inverse returns the transform undoing s.
func (s Space) Inverse() Space {
	inv := s.Orientation.Inverse()
	return Space{
		Position:    inv.Act(s.Position).Neg(),
		Orientation: inv,
	}
}

// Compose returns the transform applying o first, then s.
func (s Space) Compose(o Space) Space {
	return Space{
		Position:    s.Leave(o.Position),
		Orientation: s.Orientation.Mul(o.Orientation),
	}
}

// Translate returns s moved by offset in world coordinates.
func (s Space) Translate(offset Position) Space {
	return Space{Position: s.Position.Add(offset), Orientation: s.Orientation}
}

// Integrate advances the transform by a linear and an angular velocity over dt.
func (s Space) Integrate(dt float64, linear, angular Position) Space {
	return Space{
		Position:    s.Position.Add(linear.Mul(dt)),
		Orientation: s.Orientation.Integrate(dt, angular),
	}
}

// Derive recovers the linear and angular velocities that take past to s over dt.
func (s Space) Derive(dt float64, past Space) (linear, angular Position) {
	linear = s.Position.Sub(past.Position).Mul(1 / dt)
	angular = s.Orientation.Derive(dt, past.Orientation)
	return linear, angular
}

// IsFinite reports whether both components are free of NaN and infinities.
func (s Space) IsFinite() bool {
	return s.Position.IsFinite() && s.Orientation.IsFinite()
}

// Matrix exports the transform as a homogeneous 4x4 matrix, column major.
func (s Space) Matrix() mgl64.Mat4 {
	p := s.Position
	return mgl64.Translate3D(p[0], p[1], p[2]).Mul4(s.Orientation.Mat4())
}

// Matrix32 is Matrix in single precision, the layout GPU uniforms expect.
func (s Space) Matrix32() mgl32.Mat4 {
	m := s.Matrix()
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
