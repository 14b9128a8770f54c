package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Orientation is a unit quaternion acting as a rotation.
type Orientation mgl64.Quat

// Identity returns the orientation that does not rotate anything.
func Identity() Orientation {
	return Orientation(mgl64.QuatIdent())
}

// FromAxisAngle builds a rotation of angle radians around axis. The axis does not need to be normalized.
func FromAxisAngle(angle float64, axis Position) Orientation {
	return Orientation(mgl64.QuatRotate(angle, axis.Normalize().Vec3()))
}

// Quat returns the orientation as a mathgl quaternion.
func (o Orientation) Quat() mgl64.Quat {
	return mgl64.Quat(o)
}

// Mul composes two rotations: o.Mul(b) applies b first, then o.
func (o Orientation) Mul(b Orientation) Orientation {
	return Orientation(o.Quat().Mul(b.Quat()))
}

// Inverse returns the rotation undoing o.
func (o Orientation) Inverse() Orientation {
	return Orientation(o.Quat().Inverse())
}

// Act rotates p.
func (o Orientation) Act(p Position) Position {
	return Position(o.Quat().Rotate(p.Vec3()))
}

// Norm is the quaternion magnitude, 1 for a valid orientation.
func (o Orientation) Norm() float64 {
	return o.Quat().Len()
}

func (o Orientation) Normalize() Orientation {
	return Orientation(o.Quat().Normalize())
}

// IsFinite reports whether no component is NaN or infinite.
func (o Orientation) IsFinite() bool {
	if math.IsNaN(o.W) || math.IsInf(o.W, 0) {
		return false
	}
	return Position(o.V).IsFinite()
}

// Integrate advances the orientation by the angular velocity (a rotation vector, rad/s) over dt
// with a first order quaternion derivative step, renormalized afterwards.
func (o Orientation) Integrate(dt float64, angularVelocity Position) Orientation {
	q := o.Quat()
	omega := mgl64.Quat{W: 0, V: angularVelocity.Vec3()}
	qDot := omega.Mul(q).Scale(0.5)
	return Orientation(q.Add(qDot.Scale(dt)).Normalize())
}

// Derive recovers the angular velocity that takes past to o over dt.
// It inverts Integrate exactly: the normalized step quaternion is proportional to (1, dt/2·ω),
// so ω is read back from the ratio of its vector and scalar parts.
func (o Orientation) Derive(dt float64, past Orientation) Position {
	delta := o.Quat().Mul(past.Quat().Inverse())
	return Position(delta.V.Mul(2 / (delta.W * dt)))
}

// Mat4 returns the rotation as a homogeneous matrix.
func (o Orientation) Mat4() mgl64.Mat4 {
	return o.Quat().Mat4()
}

// ApproxEqual compares two orientations as rotations, so q and -q are equal.
func (o Orientation) ApproxEqual(b Orientation, eps float64) bool {
	return math.Abs(o.Quat().Dot(b.Quat())) >= 1-eps
}
