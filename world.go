// Package solver advances a fixed set of rigid bodies under gravity and contact constraints.
//
// Each call to Integrator.Integrate (or World.Step) splits the frame delta into equal sub-steps.
// A sub-step integrates forces into velocities, predicts the next poses, corrects penetrations
// directly on the predicted poses and finally derives the velocities back from the corrected
// motion.
package solver

import (
	"math"

	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DEFAULT_SUBSTEPS   = 50
	DEFAULT_ITERATIONS = 1
)

// StandardGravity is 9.81 m/s² pointing down the z axis.
var StandardGravity = spatial.NewPosition(0, 0, -9.81)

// Integrator is the sub-step solver. It owns scratch buffers sized for the body set it is
// given, so it must not be shared between concurrent Integrate calls.
type Integrator struct {
	SubSteps int
	// Gravity acceleration (m/s², or N/kg)
	Gravity spatial.Position
	// Position sweeps per sub-step
	Iterations int
	// Coulomb coefficient of every contact; zero leaves tangential motion alone
	Friction float64

	Events      *Events
	Logger      *zap.SugaredLogger
	Diagnostics bool

	previous  []spatial.Space
	predicted []spatial.Space
}

type IntegratorOption func(in *Integrator)

// WithIterations sets the number of Gauss-Seidel position sweeps per sub-step.
func WithIterations(iterations int) IntegratorOption {
	return func(in *Integrator) { in.Iterations = iterations }
}

// WithFriction enables Coulomb friction at every contact with coefficient mu.
func WithFriction(mu float64) IntegratorOption {
	return func(in *Integrator) { in.Friction = mu }
}

func WithEvents(events *Events) IntegratorOption {
	return func(in *Integrator) { in.Events = events }
}

func WithLogger(logger *zap.SugaredLogger) IntegratorOption {
	return func(in *Integrator) { in.Logger = logger }
}

// WithDiagnostics checks every body for non-finite state after each Integrate call.
func WithDiagnostics(enabled bool) IntegratorOption {
	return func(in *Integrator) { in.Diagnostics = enabled }
}

// NewIntegrator creates an integrator running subSteps sub-steps per call. It panics if
// subSteps is not positive.
func NewIntegrator(subSteps int, gravity spatial.Position, opts ...IntegratorOption) *Integrator {
	in := &Integrator{
		SubSteps:   subSteps,
		Gravity:    gravity,
		Iterations: DEFAULT_ITERATIONS,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.validate()
	if in.Logger == nil {
		in.Logger = zap.NewNop().Sugar()
	}
	return in
}

func (in *Integrator) validate() {
	if in.SubSteps <= 0 {
		panic(errors.Errorf("sub-step count must be positive, got %d", in.SubSteps))
	}
	if in.Iterations <= 0 {
		panic(errors.Errorf("iteration count must be positive, got %d", in.Iterations))
	}
	if !(in.Friction >= 0) || math.IsInf(in.Friction, 0) {
		panic(errors.Errorf("friction must be non-negative and finite, got %v", in.Friction))
	}
}

// reserve grows the scratch buffers; it only allocates when the body set grows.
func (in *Integrator) reserve(n int) {
	if cap(in.previous) < n {
		in.previous = make([]spatial.Space, n)
		in.predicted = make([]spatial.Space, n)
	}
	in.previous = in.previous[:n]
	in.predicted = in.predicted[:n]
}

// Integrate advances bodies by dt seconds, mutating them in place.
// dt must be positive and finite; anything else shows up as non-finite body state.
func (in *Integrator) Integrate(bodies []*actor.RigidBody, dt float64) {
	in.validate()
	in.reserve(len(bodies))
	h := dt / float64(in.SubSteps)

	for step, steps := 0, in.SubSteps; step < steps; step++ {
		// Phase 1: forces into velocities, predict poses
		for i, body := range bodies {
			in.previous[i] = body.Frame
			body.ApplyForces(h, in.Gravity)
			in.predicted[i] = body.PredictFrame(h)
		}

		// Phase 2: detect and correct, one pair at a time
		for iter, iters := 0, in.Iterations; iter < iters; iter++ {
			in.solvePositions(bodies)
		}

		// Phase 3: commit poses and derive velocities from the corrected motion
		for i, body := range bodies {
			body.CommitFrame(in.predicted[i])
			body.DeriveVelocities(in.previous[i], in.predicted[i], h)
		}
	}

	if in.Events != nil {
		in.Events.flush()
	}
	if in.Diagnostics {
		if err := Check(bodies); err != nil {
			in.Logger.Warnw("non-physical body state after integrate", "dt", dt, "error", err)
		}
	}
}

// solvePositions runs one Gauss-Seidel sweep over all unordered body pairs: each contact is
// corrected before the next pair is examined.
func (in *Integrator) solvePositions(bodies []*actor.RigidBody) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if a.IsStatic() && b.IsStatic() {
				continue
			}

			contact, ok := detect(a, b, in.predicted[i], in.predicted[j])
			if !ok {
				if in.Events != nil && overlaps(a, b, in.predicted[i], in.predicted[j]) {
					in.Events.recordOverlap(a, b)
				}
				continue
			}

			ia, ib := i, j
			if contact.BodyA != a {
				ia, ib = j, i
			}
			contact.Friction = in.Friction
			contact.Correct(&in.predicted[ia], &in.predicted[ib], &in.previous[ia], &in.previous[ib])

			if in.Events != nil {
				in.Events.recordContact(a, b)
			}
		}
	}
}

// World is a fixed body set paired with the integrator that advances it.
type World struct {
	Bodies     []*actor.RigidBody
	Integrator *Integrator
}

// NewWorld creates a world over the given bodies
func NewWorld(integrator *Integrator, bodies ...*actor.RigidBody) *World {
	return &World{Bodies: bodies, Integrator: integrator}
}

// AddBody adds a rigid body to the world. Bodies are added during setup only.
func (w *World) AddBody(body *actor.RigidBody) {
	w.Bodies = append(w.Bodies, body)
}

// Body returns the first body with the given name, or nil.
func (w *World) Body(name string) *actor.RigidBody {
	for _, body := range w.Bodies {
		if body.Name == name {
			return body
		}
	}
	return nil
}

// Step advances the world by one displayed frame of dt seconds.
func (w *World) Step(dt float64) {
	w.Integrator.Integrate(w.Bodies, dt)
}

// Check reports every body whose state is no longer physical.
func (w *World) Check() error {
	return Check(w.Bodies)
}
