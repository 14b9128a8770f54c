package solver

import (
	"strconv"

	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats/scalar"
)

// NormTolerance is how far an orientation may drift from unit length before Check reports it.
const NormTolerance = 1e-9

// Check looks for bodies whose pose or velocities went non-finite, or whose orientation is
// no longer a unit quaternion. It only reports; nothing is repaired.
func Check(bodies []*actor.RigidBody) error {
	var err error
	for i, body := range bodies {
		err = multierr.Append(err, checkBody(i, body))
	}
	return err
}

func checkBody(index int, body *actor.RigidBody) error {
	name := body.Name
	if name == "" {
		name = "#" + strconv.Itoa(index)
	}

	var err error
	if !body.Frame.IsFinite() {
		err = multierr.Append(err, errors.Errorf("body %s: non-finite frame %v", name, body.Frame))
	} else if norm := body.Frame.Orientation.Norm(); !scalar.EqualWithinAbs(norm, 1, NormTolerance) {
		err = multierr.Append(err, errors.Errorf("body %s: orientation norm %v drifted from 1", name, norm))
	}
	if !body.LinearVelocity.IsFinite() {
		err = multierr.Append(err, errors.Errorf("body %s: non-finite linear velocity %v", name, body.LinearVelocity))
	}
	if !body.AngularVelocity.IsFinite() {
		err = multierr.Append(err, errors.Errorf("body %s: non-finite angular velocity %v", name, body.AngularVelocity))
	}
	return err
}
