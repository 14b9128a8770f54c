// Package scene reads a body set from YAML and turns it into a ready to step solver.World.
package scene

import (
	"bytes"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	solver "github.com/Jim-Eckerlein/constraints-solver"
	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
)

// Vector is a 3 component YAML sequence.
type Vector [3]float64

func (v Vector) position() spatial.Position {
	return spatial.NewPosition(v[0], v[1], v[2])
}

func (v Vector) finite() bool {
	return v.position().IsFinite()
}

// Scene is the file level description of a world.
// Zero SubSteps and Iterations fall back to the solver defaults, a missing gravity to
// StandardGravity. Friction is off unless given.
type Scene struct {
	SubSteps   int     `yaml:"substeps"`
	Iterations int     `yaml:"iterations"`
	Gravity    *Vector `yaml:"gravity"`
	Friction   float64 `yaml:"friction"`
	Bodies     []Body  `yaml:"bodies"`
}

// Plane is an infinite plane {x : direction·x = offset} in the body frame.
type Plane struct {
	Direction Vector  `yaml:"direction"`
	Offset    float64 `yaml:"offset"`
}

// Box is given by its half extents.
type Box struct {
	HalfExtents Vector `yaml:"half_extents"`
}

// Rotation is an axis and an angle in radians.
type Rotation struct {
	Axis  Vector  `yaml:"axis"`
	Angle float64 `yaml:"angle"`
}

// Body describes a single rigid body. Exactly one of Plane and Box must be set.
type Body struct {
	Name            string    `yaml:"name"`
	Plane           *Plane    `yaml:"plane"`
	Box             *Box      `yaml:"box"`
	Static          bool      `yaml:"static"`
	Mass            float64   `yaml:"mass"`
	Position        Vector    `yaml:"position"`
	Orientation     *Rotation `yaml:"orientation"`
	Velocity        Vector    `yaml:"velocity"`
	AngularVelocity Vector    `yaml:"angular_velocity"`
	Force           Vector    `yaml:"force"`
	InternalForce   Vector    `yaml:"internal_force"`
	Torque          Vector    `yaml:"torque"`
	InternalTorque  Vector    `yaml:"internal_torque"`
}

// Parse decodes a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Scene
	if err := decoder.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "cannot decode scene")
	}
	return &s, nil
}

// Load reads and decodes the scene file at path.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scene %q", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %q", path)
	}
	return s, nil
}

// Default is a unit cube dropped from z = 2 onto the ground plane z = 0.
func Default() *Scene {
	return &Scene{
		SubSteps: solver.DEFAULT_SUBSTEPS,
		Gravity:  &Vector{0, 0, -9.81},
		Bodies: []Body{
			{
				Name:   "ground",
				Plane:  &Plane{Direction: Vector{0, 0, 1}},
				Static: true,
			},
			{
				Name:     "cube",
				Box:      &Box{HalfExtents: Vector{0.5, 0.5, 0.5}},
				Mass:     1,
				Position: Vector{0, 0, 2},
			},
		},
	}
}

// Validate reports every problem in the scene at once.
func (s *Scene) Validate() error {
	var err error
	if s.SubSteps < 0 {
		err = multierr.Append(err, errors.Errorf("substeps must not be negative, got %d", s.SubSteps))
	}
	if s.Iterations < 0 {
		err = multierr.Append(err, errors.Errorf("iterations must not be negative, got %d", s.Iterations))
	}
	if s.Gravity != nil && !s.Gravity.finite() {
		err = multierr.Append(err, errors.Errorf("gravity must be finite, got %v", *s.Gravity))
	}
	if !(s.Friction >= 0) || math.IsInf(s.Friction, 0) {
		err = multierr.Append(err, errors.Errorf("friction must be non-negative and finite, got %v", s.Friction))
	}

	named := lo.Filter(s.Bodies, func(b Body, _ int) bool { return b.Name != "" })
	for _, duplicate := range lo.FindDuplicatesBy(named, func(b Body) string { return b.Name }) {
		err = multierr.Append(err, errors.Errorf("body name %q is used more than once", duplicate.Name))
	}

	for i, body := range s.Bodies {
		for _, bodyErr := range multierr.Errors(body.validate()) {
			err = multierr.Append(err, errors.Wrapf(bodyErr, "body %s", body.label(i)))
		}
	}
	return err
}

func (b Body) label(index int) string {
	if b.Name != "" {
		return b.Name
	}
	return "#" + strconv.Itoa(index)
}

func (b Body) validate() error {
	var err error

	switch {
	case b.Plane == nil && b.Box == nil:
		err = multierr.Append(err, errors.New("needs a plane or a box"))
	case b.Plane != nil && b.Box != nil:
		err = multierr.Append(err, errors.New("cannot be both a plane and a box"))
	case b.Plane != nil:
		if !b.Plane.Direction.finite() || b.Plane.Direction.position().LenSqr() == 0 {
			err = multierr.Append(err, errors.Errorf("plane direction must be finite and non-zero, got %v", b.Plane.Direction))
		}
		if math.IsNaN(b.Plane.Offset) || math.IsInf(b.Plane.Offset, 0) {
			err = multierr.Append(err, errors.Errorf("plane offset must be finite, got %v", b.Plane.Offset))
		}
	case b.Box != nil:
		for axis, h := range b.Box.HalfExtents {
			if !(h > 0) || math.IsInf(h, 0) {
				err = multierr.Append(err, errors.Errorf("box half extent %d must be positive and finite, got %v", axis, h))
			}
		}
	}

	if !b.Static && (!(b.Mass > 0) || math.IsInf(b.Mass, 0)) {
		err = multierr.Append(err, errors.Errorf("dynamic mass must be positive and finite, got %v", b.Mass))
	}

	if b.Orientation != nil {
		axis := b.Orientation.Axis
		if !axis.finite() || axis.position().LenSqr() == 0 {
			err = multierr.Append(err, errors.Errorf("orientation axis must be finite and non-zero, got %v", axis))
		}
		if math.IsNaN(b.Orientation.Angle) || math.IsInf(b.Orientation.Angle, 0) {
			err = multierr.Append(err, errors.Errorf("orientation angle must be finite, got %v", b.Orientation.Angle))
		}
	}

	for _, field := range []lo.Tuple2[string, Vector]{
		lo.T2("position", b.Position),
		lo.T2("velocity", b.Velocity),
		lo.T2("angular_velocity", b.AngularVelocity),
		lo.T2("force", b.Force),
		lo.T2("internal_force", b.InternalForce),
		lo.T2("torque", b.Torque),
		lo.T2("internal_torque", b.InternalTorque),
	} {
		if !field.B.finite() {
			err = multierr.Append(err, errors.Errorf("%s must be finite, got %v", field.A, field.B))
		}
	}
	return err
}

// Build validates the scene and creates the world it describes. A nil logger discards output.
func (s *Scene) Build(logger *zap.SugaredLogger, opts ...solver.IntegratorOption) (*solver.World, error) {
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid scene")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	subSteps := s.SubSteps
	if subSteps == 0 {
		subSteps = solver.DEFAULT_SUBSTEPS
	}
	gravity := solver.StandardGravity
	if s.Gravity != nil {
		gravity = s.Gravity.position()
	}

	integratorOpts := []solver.IntegratorOption{solver.WithLogger(logger)}
	if s.Iterations > 0 {
		integratorOpts = append(integratorOpts, solver.WithIterations(s.Iterations))
	}
	if s.Friction > 0 {
		integratorOpts = append(integratorOpts, solver.WithFriction(s.Friction))
	}
	integrator := solver.NewIntegrator(subSteps, gravity, append(integratorOpts, opts...)...)

	bodies := lo.Map(s.Bodies, func(b Body, _ int) *actor.RigidBody { return b.build() })
	world := solver.NewWorld(integrator, bodies...)

	logger.Infow("scene built",
		"bodies", len(bodies),
		"static", lo.CountBy(bodies, (*actor.RigidBody).IsStatic),
		"substeps", integrator.SubSteps,
		"iterations", integrator.Iterations,
		"gravity", gravity,
		"friction", integrator.Friction,
	)
	return world, nil
}

func (b Body) build() *actor.RigidBody {
	var collider actor.Collider
	if b.Plane != nil {
		collider = actor.NewPlane(b.Plane.Direction.position(), b.Plane.Offset)
	} else {
		collider = actor.NewBox(b.Box.HalfExtents.position())
	}

	orientation := spatial.Identity()
	if b.Orientation != nil {
		orientation = spatial.FromAxisAngle(b.Orientation.Angle, b.Orientation.Axis.position())
	}

	mass := actor.Static()
	if !b.Static {
		mass = actor.Dynamic(b.Mass)
	}

	return actor.NewRigidBody(
		collider,
		spatial.NewSpace(b.Position.position(), orientation),
		mass,
		actor.WithName(b.Name),
		actor.WithLinearVelocity(b.Velocity.position()),
		actor.WithAngularVelocity(b.AngularVelocity.position()),
		actor.WithExternalForce(b.Force.position()),
		actor.WithInternalForce(b.InternalForce.position()),
		actor.WithExternalTorque(b.Torque.position()),
		actor.WithInternalTorque(b.InternalTorque.position()),
	)
}
