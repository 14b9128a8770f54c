package constraint

import (
	"math"

	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
)

// MaxManifold is the most points a contact carries, one per box corner.
const MaxManifold = 8

// Manifold lists the penetrating points of a contact, projected onto the contact surface,
// with the depth of each.
type Manifold struct {
	Points [MaxManifold]spatial.Position
	Depths [MaxManifold]float64
	Count  int
}

// Add appends a point; points past MaxManifold are dropped.
func (m *Manifold) Add(point spatial.Position, depth float64) {
	if m.Count == MaxManifold {
		return
	}
	m.Points[m.Count] = point
	m.Depths[m.Count] = depth
	m.Count++
}

func (m Manifold) TotalDepth() float64 {
	total := 0.0
	for i, n := 0, m.Count; i < n; i++ {
		total += m.Depths[i]
	}
	return total
}

// Contact describes one interaction between two bodies at an instant.
// Normal points from BodyA towards BodyB; a negative Depth means the shapes are separated.
// Point is the deepest point and Center the depth-weighted center of the manifold, both on
// the contact surface. Contacts are rebuilt every sub-step and never kept.
type Contact struct {
	BodyA    *actor.RigidBody
	BodyB    *actor.RigidBody
	Point    spatial.Position
	Normal   spatial.Position
	Depth    float64
	Center   spatial.Position
	Manifold Manifold

	// Friction is the Coulomb coefficient applied to the tangential slip; zero disables it.
	Friction float64
}

// Penetrating reports whether the contact needs a correction
func (c Contact) Penetrating() bool {
	return c.Depth > DepthSlop
}

// anchor is where the normal correction is applied
func (c Contact) anchor() spatial.Position {
	if c.Manifold.Count > 0 {
		return c.Center
	}
	return c.Point
}

// Correct pushes the bodies apart along the normal by the penetration depth. The push acts at
// the contact, so each body both translates and rotates, split by generalized inverse mass.
// frameA/frameB are the predicted poses being corrected and previousA/previousB the poses at
// the start of the sub-step.
//
// Only the part of the depth caused by this sub-step's approach of the contact points is left
// for the velocity derivation to see. Penetration that already existed at the start of the
// sub-step is removed from both the predicted and the previous pose, so it never becomes
// separation speed.
func (c Contact) Correct(frameA, frameB, previousA, previousB *spatial.Space) {
	if !c.Penetrating() {
		return
	}

	n := c.Normal
	point := c.anchor()
	a, b := newSide(c.BodyA, *frameA), newSide(c.BodyB, *frameB)
	w := a.weight(point, n) + b.weight(point, n)
	if w <= 0 {
		return
	}

	deltaA := c.BodyA.Delta(point, *frameA, *previousA)
	deltaB := c.BodyB.Delta(point, *frameB, *previousB)
	approach := deltaA.Sub(deltaB).Dot(n)
	induced := math.Min(math.Max(approach, 0), c.Depth)
	existing := c.Depth - induced

	rA, rB := a.arm(point), b.arm(point)
	lambda := c.Depth / w
	a.push(frameA, rA, n.Mul(-lambda))
	b.push(frameB, rB, n.Mul(lambda))
	if existing > 0 {
		e := existing / w
		a.push(previousA, rA, n.Mul(-e))
		b.push(previousB, rB, n.Mul(e))
	}

	if c.Friction > 0 {
		c.correctFriction(frameA, frameB, *previousA, *previousB, lambda)
	}
}

// correctFriction removes the tangential slip of every manifold point over the sub-step,
// bounded per point by Friction times its share of the normal correction.
func (c Contact) correctFriction(frameA, frameB *spatial.Space, previousA, previousB spatial.Space, lambda float64) {
	total := c.Manifold.TotalDepth()
	if total <= 0 {
		return
	}

	n := c.Normal
	for i, count := 0, c.Manifold.Count; i < count; i++ {
		point := c.Manifold.Points[i]
		slip := c.BodyB.Delta(point, *frameB, previousB).Sub(c.BodyA.Delta(point, *frameA, previousA))
		tangential := slip.Sub(n.Mul(slip.Dot(n)))
		distance := tangential.Len()
		if distance <= DepthSlop {
			continue
		}

		t := tangential.Mul(1 / distance)
		a, b := newSide(c.BodyA, *frameA), newSide(c.BodyB, *frameB)
		w := a.weight(point, t) + b.weight(point, t)
		if w <= 0 {
			continue
		}

		bound := c.Friction * lambda * c.Manifold.Depths[i] / total
		lambdaT := math.Min(distance/w, bound)
		a.push(frameA, a.arm(point), t.Mul(lambdaT))
		b.push(frameB, b.arm(point), t.Mul(-lambdaT))
	}
}
