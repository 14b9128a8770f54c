package solver

import (
	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/constraint"
	"github.com/Jim-Eckerlein/constraints-solver/gjk"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
)

// detectFunc generates the contact between two placed bodies, if any
type detectFunc func(a, b *actor.RigidBody, frameA, frameB spatial.Space) (constraint.Contact, bool)

// contactTable dispatches on the collider kinds of both bodies.
// Box-vs-Box and Plane-vs-Plane do not generate contacts.
var contactTable = [2][2]detectFunc{
	actor.ColliderBox: {
		actor.ColliderBox:   noContact,
		actor.ColliderPlane: boxPlane,
	},
	actor.ColliderPlane: {
		actor.ColliderBox:   planeBox,
		actor.ColliderPlane: noContact,
	},
}

// DetectContacts returns the contact between two bodies at their current frames.
// Contacts against a plane always carry the plane as BodyA and the plane's world
// direction as the normal, whatever order the bodies were given in.
func DetectContacts(a, b *actor.RigidBody) (constraint.Contact, bool) {
	return detect(a, b, a.Frame, b.Frame)
}

func detect(a, b *actor.RigidBody, frameA, frameB spatial.Space) (constraint.Contact, bool) {
	if a.IsStatic() && b.IsStatic() {
		return constraint.Contact{}, false
	}
	return contactTable[a.Collider.Kind()][b.Collider.Kind()](a, b, frameA, frameB)
}

func noContact(_, _ *actor.RigidBody, _, _ spatial.Space) (constraint.Contact, bool) {
	return constraint.Contact{}, false
}

func boxPlane(box, plane *actor.RigidBody, boxFrame, planeFrame spatial.Space) (constraint.Contact, bool) {
	return planeBox(plane, box, planeFrame, boxFrame)
}

// planeBox finds the deepest box corner below the plane. Corners are visited in index order
// and only a strictly smaller distance replaces the current minimum, so ties keep the lowest index.
// Every corner below the plane joins the manifold; the center is their depth-weighted mean,
// taken in box coordinates and projected onto the plane.
func planeBox(plane, box *actor.RigidBody, planeFrame, boxFrame spatial.Space) (constraint.Contact, bool) {
	shape := plane.Collider
	corners := box.Collider.Corners()

	var (
		deepest  spatial.Position
		manifold constraint.Manifold
		weighted spatial.Position
		total    float64
	)
	minDistance := 0.0
	for i, corner := range corners {
		local := planeFrame.Enter(boxFrame.Leave(corner))
		distance := shape.SignedDistance(local)
		if i == 0 || distance < minDistance {
			minDistance = distance
			deepest = local
		}
		if distance < 0 {
			manifold.Add(planeFrame.Leave(project(shape, local)), -distance)
			weighted = weighted.Add(corner.Mul(-distance))
			total -= distance
		}
	}

	if !(minDistance < 0) {
		return constraint.Contact{}, false
	}

	center := planeFrame.Enter(boxFrame.Leave(weighted.Mul(1 / total)))
	return constraint.Contact{
		BodyA:    plane,
		BodyB:    box,
		Point:    planeFrame.Leave(project(shape, deepest)),
		Normal:   planeFrame.LeaveDirection(shape.Direction()),
		Depth:    -minDistance,
		Center:   planeFrame.Leave(project(shape, center)),
		Manifold: manifold,
	}, true
}

// project drops a plane-local point onto the plane
func project(plane actor.Collider, local spatial.Position) spatial.Position {
	return local.Sub(plane.Direction().Mul(plane.SignedDistance(local)))
}

// overlaps reports whether two boxes intersect. It is only consulted for pairs the
// contact table does not resolve.
func overlaps(a, b *actor.RigidBody, frameA, frameB spatial.Space) bool {
	if a.Collider.Kind() != actor.ColliderBox || b.Collider.Kind() != actor.ColliderBox {
		return false
	}
	if !a.Collider.WorldAABB(frameA).Overlaps(b.Collider.WorldAABB(frameB)) {
		return false
	}
	return gjk.Intersect(
		gjk.Placed{Collider: a.Collider, Frame: frameA},
		gjk.Placed{Collider: b.Collider, Frame: frameB},
	)
}
