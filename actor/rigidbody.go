package actor

import (
	"math"

	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MassKind tells dynamic bodies from immovable ones
type MassKind uint8

const (
	// MassDynamic bodies are affected by forces, gravity, and contacts.
	// They have a finite positive mass.
	MassDynamic MassKind = iota

	// MassStatic bodies are immovable and have infinite mass
	// (ground, walls). They are never integrated.
	MassStatic
)

// MassClass is the effective mass of a body: Dynamic(mass > 0) or Static.
type MassClass struct {
	kind MassKind
	mass float64
}

// Dynamic returns the mass class of a movable body. It panics unless mass is positive and finite.
func Dynamic(mass float64) MassClass {
	if !(mass > 0) || math.IsInf(mass, 0) {
		panic(errors.Errorf("dynamic body mass must be positive and finite, got %v", mass))
	}
	return MassClass{kind: MassDynamic, mass: mass}
}

// Static returns the mass class of an immovable body.
func Static() MassClass {
	return MassClass{kind: MassStatic, mass: math.Inf(1)}
}

func (m MassClass) Kind() MassKind {
	return m.kind
}

// Mass is +Inf for static bodies.
func (m MassClass) Mass() float64 {
	return m.mass
}

// InverseMass is 0 for static bodies.
func (m MassClass) InverseMass() float64 {
	if m.kind == MassStatic {
		return 0
	}
	return 1 / m.mass
}

// RigidBody is the simulation state of one object
type RigidBody struct {
	Name string

	// Spatial properties
	Frame spatial.Space

	// Linear motion (m/s) and angular motion as a rotation vector (rad/s)
	LinearVelocity  spatial.Position
	AngularVelocity spatial.Position

	// ExternalForce acts in world space, InternalForce in the body's own frame (N).
	ExternalForce spatial.Position
	InternalForce spatial.Position
	// Torques, same convention (N⋅m)
	ExternalTorque spatial.Position
	InternalTorque spatial.Position

	Mass     MassClass
	Collider Collider

	inverseInertiaLocal mgl64.Mat3
}

// Option customizes a body at construction
type Option func(rb *RigidBody)

func WithName(name string) Option {
	return func(rb *RigidBody) { rb.Name = name }
}

func WithLinearVelocity(v spatial.Position) Option {
	return func(rb *RigidBody) { rb.LinearVelocity = v }
}

func WithAngularVelocity(w spatial.Position) Option {
	return func(rb *RigidBody) { rb.AngularVelocity = w }
}

func WithExternalForce(f spatial.Position) Option {
	return func(rb *RigidBody) { rb.ExternalForce = f }
}

func WithInternalForce(f spatial.Position) Option {
	return func(rb *RigidBody) { rb.InternalForce = f }
}

func WithExternalTorque(t spatial.Position) Option {
	return func(rb *RigidBody) { rb.ExternalTorque = t }
}

func WithInternalTorque(t spatial.Position) Option {
	return func(rb *RigidBody) { rb.InternalTorque = t }
}

// NewRigidBody creates a body from its collider, initial pose and mass class.
// Velocities and forces start at zero unless set through options; static bodies
// keep zero velocities whatever the options say.
func NewRigidBody(collider Collider, frame spatial.Space, mass MassClass, opts ...Option) *RigidBody {
	rb := &RigidBody{
		Frame:    frame,
		Mass:     mass,
		Collider: collider,
	}
	for _, opt := range opts {
		opt(rb)
	}

	if mass.kind == MassStatic {
		rb.LinearVelocity = spatial.Position{}
		rb.AngularVelocity = spatial.Position{}
		return rb
	}

	rb.inverseInertiaLocal = collider.Inertia(mass.mass).Inv()
	return rb
}

func (rb *RigidBody) IsStatic() bool {
	return rb.Mass.kind == MassStatic
}

func (rb *RigidBody) InverseMass() float64 {
	return rb.Mass.InverseMass()
}

// ApplyForces integrates gravity and the applied forces and torques into the velocities over h.
func (rb *RigidBody) ApplyForces(h float64, gravity spatial.Position) {
	if rb.IsStatic() {
		return
	}

	rotation := rb.Frame.Orientation
	force := rb.ExternalForce.Add(rotation.Act(rb.InternalForce))
	acceleration := gravity.Add(force.Mul(rb.InverseMass()))
	rb.LinearVelocity = rb.LinearVelocity.Add(acceleration.Mul(h))

	torque := rb.ExternalTorque.Add(rotation.Act(rb.InternalTorque))
	if torque != (spatial.Position{}) {
		angularAcceleration := spatial.Position(rb.InverseInertiaWorld().Mul3x1(torque.Vec3()))
		rb.AngularVelocity = rb.AngularVelocity.Add(angularAcceleration.Mul(h))
	}
}

// PredictFrame returns the pose reached after h at the current velocities.
func (rb *RigidBody) PredictFrame(h float64) spatial.Space {
	if rb.IsStatic() {
		return rb.Frame
	}
	return rb.Frame.Integrate(h, rb.LinearVelocity, rb.AngularVelocity)
}

// CommitFrame replaces the pose after constraint correction.
func (rb *RigidBody) CommitFrame(corrected spatial.Space) {
	if rb.IsStatic() {
		return
	}
	rb.Frame = corrected
}

// DeriveVelocities recomputes the velocities from the motion between previous and corrected,
// so positional corrections turn into velocity changes.
func (rb *RigidBody) DeriveVelocities(previous, corrected spatial.Space, h float64) {
	if rb.IsStatic() {
		return
	}
	rb.LinearVelocity, rb.AngularVelocity = corrected.Derive(h, previous)
}

// Delta is the displacement of the body-fixed point found at world in frame, measured from
// where that point sat in previous. Static bodies never move.
func (rb *RigidBody) Delta(world spatial.Position, frame, previous spatial.Space) spatial.Position {
	if rb.IsStatic() {
		return spatial.Position{}
	}
	local := frame.Enter(world)
	return world.Sub(previous.Leave(local))
}

// Matrix exports the pose for the presentation layer
func (rb *RigidBody) Matrix() mgl64.Mat4 {
	return rb.Frame.Matrix()
}

// InverseInertiaWorld returns R * I_local^-1 * R^T for the current orientation, zero for static bodies
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	return rb.InverseInertia(rb.Frame.Orientation)
}

// InverseInertia is the world inverse inertia the body would have at orientation.
func (rb *RigidBody) InverseInertia(orientation spatial.Orientation) mgl64.Mat3 {
	if rb.IsStatic() {
		return mgl64.Mat3{}
	}

	R := orientation.Mat4().Mat3()
	return R.Mul3(rb.inverseInertiaLocal).Mul3(R.Transpose())
}
