// Package constraint holds the contact descriptors produced by collision detection and the
// position-level correction applied to them during a sub-step.
package constraint

import (
	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// DepthSlop is the penetration below which a contact is left alone.
const DepthSlop = 1e-12

// side is one body of a contact as the correction sees it: the inverse mass and the world
// inverse inertia at the predicted orientation. Static bodies have both at zero.
type side struct {
	body       *actor.RigidBody
	center     spatial.Position
	invMass    float64
	invInertia mgl64.Mat3
}

func newSide(body *actor.RigidBody, frame spatial.Space) side {
	return side{
		body:       body,
		center:     frame.Position,
		invMass:    body.InverseMass(),
		invInertia: body.InverseInertia(frame.Orientation),
	}
}

func (s side) arm(point spatial.Position) spatial.Position {
	return point.Sub(s.center)
}

// weight is the generalized inverse mass of the body for a push along direction at point:
// invM + (r×d)·I⁻¹(r×d).
func (s side) weight(point, direction spatial.Position) float64 {
	if s.invMass == 0 {
		return 0
	}
	rd := s.arm(point).Cross(direction)
	return s.invMass + rd.Dot(s.turn(rd))
}

func (s side) turn(v spatial.Position) spatial.Position {
	return spatial.Position(s.invInertia.Mul3x1(v.Vec3()))
}

// push applies a positional impulse at the lever arm r to space: the position moves by
// impulse·invM and the orientation turns by I⁻¹(r×impulse).
func (s side) push(space *spatial.Space, r, impulse spatial.Position) {
	if s.invMass == 0 {
		return
	}
	space.Position = space.Position.Add(impulse.Mul(s.invMass))
	rotation := s.turn(r.Cross(impulse))
	if rotation != (spatial.Position{}) {
		space.Orientation = space.Orientation.Integrate(1, rotation)
	}
}
