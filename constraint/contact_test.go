package constraint

import (
	"math"
	"testing"

	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"go.viam.com/test"
)

func ground() *actor.RigidBody {
	return actor.NewRigidBody(actor.NewPlane(spatial.NewPosition(0, 0, 1), 0), spatial.IdentitySpace(), actor.Static())
}

func box(mass, z float64) *actor.RigidBody {
	return actor.NewRigidBody(
		actor.NewBox(spatial.NewPosition(0.5, 0.5, 0.5)),
		spatial.NewSpace(spatial.NewPosition(0, 0, z), spatial.Identity()),
		actor.Dynamic(mass),
	)
}

func TestPenetrating(t *testing.T) {
	test.That(t, Contact{Depth: 0.1}.Penetrating(), test.ShouldBeTrue)
	test.That(t, Contact{Depth: 0}.Penetrating(), test.ShouldBeFalse)
	test.That(t, Contact{Depth: DepthSlop / 2}.Penetrating(), test.ShouldBeFalse)
	test.That(t, Contact{Depth: -1}.Penetrating(), test.ShouldBeFalse)
}

func TestSideWeight(t *testing.T) {
	up := spatial.NewPosition(0, 0, 1)
	tests := []struct {
		name  string
		body  *actor.RigidBody
		point spatial.Position
		want  float64
	}{
		{"static", ground(), spatial.Zero(), 0},
		{"through the center", box(2, 0), spatial.NewPosition(0, 0, -0.5), 0.5},
		// unit box, I⁻¹ = 6: 1 + 6·0.5²
		{"off center", box(1, 0), spatial.NewPosition(0.5, 0, -0.5), 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.That(t, newSide(tt.body, tt.body.Frame).weight(tt.point, up), test.ShouldAlmostEqual, tt.want, 1e-12)
		})
	}
}

func TestManifold(t *testing.T) {
	var m Manifold
	for i := 0; i < MaxManifold+2; i++ {
		m.Add(spatial.NewPosition(float64(i), 0, 0), 0.5)
	}
	test.That(t, m.Count, test.ShouldEqual, MaxManifold)
	test.That(t, m.TotalDepth(), test.ShouldAlmostEqual, 4.0, 1e-12)
	test.That(t, m.Points[MaxManifold-1], test.ShouldResemble, spatial.NewPosition(MaxManifold-1, 0, 0))
}

// =============================================================================
// Correct
// =============================================================================

func TestCorrect_ExistingPenetrationMovesPrevious(t *testing.T) {
	// the box starts the sub-step already 0.2 deep and does not move during it
	plane, b := ground(), box(1, 0.3)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.2}

	frameA, previousA := plane.Frame, plane.Frame
	frameB, previousB := b.Frame, b.Frame
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameB.Position.ApproxEqual(spatial.NewPosition(0, 0, 0.5), 1e-12), test.ShouldBeTrue)
	test.That(t, previousB.Position.ApproxEqual(spatial.NewPosition(0, 0, 0.5), 1e-12), test.ShouldBeTrue)
	test.That(t, frameA, test.ShouldResemble, plane.Frame)
	test.That(t, previousA, test.ShouldResemble, plane.Frame)
}

func TestCorrect_ApproachOnlyLeavesPrevious(t *testing.T) {
	// the box moved 0.1 down this sub-step and ended 0.05 deep
	plane, b := ground(), box(1, 0.45)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.05}

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame.Translate(spatial.NewPosition(0, 0, 0.1))
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameB.Position.ApproxEqual(spatial.NewPosition(0, 0, 0.5), 1e-12), test.ShouldBeTrue)
	test.That(t, previousB.Position.ApproxEqual(spatial.NewPosition(0, 0, 0.55), 1e-12), test.ShouldBeTrue)
}

func TestCorrect_PartialApproach(t *testing.T) {
	// 0.1 deep after moving 0.04 closer: 0.06 already existed
	plane, b := ground(), box(1, 0.4)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.1}

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame.Translate(spatial.NewPosition(0, 0, 0.04))
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameB.Position.Z(), test.ShouldAlmostEqual, 0.5, 1e-12)
	test.That(t, previousB.Position.Z(), test.ShouldAlmostEqual, 0.5, 1e-12)
}

func TestCorrect_SplitByInverseMass(t *testing.T) {
	a, b := box(1, 0), box(3, 0.9)
	contact := Contact{BodyA: a, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.1}

	frameA, previousA := a.Frame, a.Frame
	frameB, previousB := b.Frame, b.Frame
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameA.Position.Z(), test.ShouldAlmostEqual, -0.075, 1e-12)
	test.That(t, frameB.Position.Z(), test.ShouldAlmostEqual, 0.925, 1e-12)
	// separation along the normal is restored
	test.That(t, frameB.Position.Z()-frameA.Position.Z(), test.ShouldAlmostEqual, 1, 1e-12)
}

func TestCorrect_IgnoresSeparatedAndStaticPairs(t *testing.T) {
	plane, b := ground(), box(1, 2)

	frameA, previousA := plane.Frame, plane.Frame
	frameB, previousB := b.Frame, b.Frame
	Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: -1.5}.
		Correct(&frameA, &frameB, &previousA, &previousB)
	test.That(t, frameB, test.ShouldResemble, b.Frame)

	other := ground()
	frameB, previousB = other.Frame, other.Frame
	Contact{BodyA: plane, BodyB: other, Normal: spatial.NewPosition(0, 0, 1), Depth: 1}.
		Correct(&frameA, &frameB, &previousA, &previousB)
	test.That(t, frameA, test.ShouldResemble, plane.Frame)
	test.That(t, frameB, test.ShouldResemble, other.Frame)
}

func TestCorrect_OffCenterContactRotates(t *testing.T) {
	// one corner 0.1 deep: the push at the corner lifts it by the full depth, partly by turning
	plane, b := ground(), box(1, 0.4)
	corner := spatial.NewPosition(0.5, 0, 0)
	contact := Contact{BodyA: plane, BodyB: b, Point: corner, Center: corner, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.1}
	contact.Manifold.Add(corner, 0.1)

	frameA, previousA := plane.Frame, plane.Frame
	frameB, previousB := b.Frame, b.Frame
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	// w = 1 + 6·0.5², λ = 0.1 / 2.5
	test.That(t, frameB.Position.Z(), test.ShouldAlmostEqual, 0.44, 1e-12)
	test.That(t, frameB.Orientation.Act(spatial.NewPosition(1, 0, 0)).Z(), test.ShouldBeGreaterThan, 0)

	bodyPoint := b.Frame.Enter(corner)
	test.That(t, frameB.Leave(bodyPoint).Z(), test.ShouldAlmostEqual, 0.1, 1e-2)

	// nothing approached, so the previous pose carries the same turn
	test.That(t, previousB.Orientation.ApproxEqual(frameB.Orientation, 1e-12), test.ShouldBeTrue)
	test.That(t, frameA, test.ShouldResemble, plane.Frame)
}

func TestCorrect_ApproachMeasuredAtContactPoint(t *testing.T) {
	// the center did not move but the body turned, driving the corner 0.05 into the plane
	plane, b := ground(), box(1, 0.5)
	corner := spatial.NewPosition(0.5, 0, -0.05)
	contact := Contact{BodyA: plane, BodyB: b, Point: corner, Center: corner, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.05}
	contact.Manifold.Add(corner, 0.05)

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame
	// the same body point sat about 0.11 higher before the turn
	previousB.Orientation = spatial.FromAxisAngle(-0.2, spatial.NewPosition(0, 1, 0))
	before := previousB
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, previousB, test.ShouldResemble, before)
}

func TestCorrect_FrictionStopsSlip(t *testing.T) {
	// the box slid 0.1 along x during the sub-step while resting 0.05 deep
	plane, b := ground(), box(1, 0.45)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.05, Friction: 10}
	contact.Manifold.Add(spatial.Zero(), 0.05)

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame.Translate(spatial.NewPosition(-0.1, 0, 0))
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameB.Position.X(), test.ShouldAlmostEqual, -0.04, 1e-12)
	test.That(t, frameB.Position.Z(), test.ShouldAlmostEqual, 0.5, 1e-12)

	slip := b.Delta(spatial.Zero(), frameB, previousB)
	test.That(t, math.Abs(slip.X()), test.ShouldBeLessThan, 1e-3)
	test.That(t, math.Abs(slip.Y()), test.ShouldBeLessThan, 1e-12)
}

func TestCorrect_FrictionBoundedByNormalCorrection(t *testing.T) {
	plane, b := ground(), box(1, 0.45)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.05, Friction: 0.1}
	contact.Manifold.Add(spatial.Zero(), 0.05)

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame.Translate(spatial.NewPosition(-0.1, 0, 0))
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	// μ·λ = 0.1 · 0.05
	test.That(t, frameB.Position.X(), test.ShouldAlmostEqual, -0.005, 1e-12)
}

func TestCorrect_FrictionlessKeepsSlip(t *testing.T) {
	plane, b := ground(), box(1, 0.45)
	contact := Contact{BodyA: plane, BodyB: b, Normal: spatial.NewPosition(0, 0, 1), Depth: 0.05}
	contact.Manifold.Add(spatial.Zero(), 0.05)

	frameA, previousA := plane.Frame, plane.Frame
	frameB := b.Frame
	previousB := b.Frame.Translate(spatial.NewPosition(-0.1, 0, 0))
	contact.Correct(&frameA, &frameB, &previousA, &previousB)

	test.That(t, frameB.Position.X(), test.ShouldEqual, 0.0)
	test.That(t, frameB.Orientation, test.ShouldResemble, b.Frame.Orientation)
}
