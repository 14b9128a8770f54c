// Package gjk answers whether two convex colliders overlap, using the Gilbert-Johnson-Keerthi
// algorithm on their Minkowski difference.
//
// Only a boolean answer is produced: no penetration depth or contact point. The solver uses it
// to report overlapping box pairs, which it does not resolve.
package gjk

import (
	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
)

const maxIterations = 32

// Placed is a collider positioned in the world
type Placed struct {
	Collider actor.Collider
	Frame    spatial.Space
}

// Support returns the world point of the shape furthest along a world direction.
func (p Placed) Support(direction spatial.Position) spatial.Position {
	local := p.Collider.Support(p.Frame.EnterDirection(direction))
	return p.Frame.Leave(local)
}

// Simplex holds 1-4 points of the Minkowski difference, the most recent last.
type Simplex struct {
	Points [4]spatial.Position
	Count  int
}

func (s *Simplex) push(p spatial.Position) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(points ...spatial.Position) {
	s.Count = copy(s.Points[:], points)
}

// MinkowskiSupport is the support point of A - B along direction
func MinkowskiSupport(a, b Placed, direction spatial.Position) spatial.Position {
	return a.Support(direction).Sub(b.Support(direction.Neg()))
}

// Intersect reports whether the two shapes overlap. Touching shapes count as overlapping.
func Intersect(a, b Placed) bool {
	var simplex Simplex

	direction := b.Frame.Position.Sub(a.Frame.Position)
	if direction.LenSqr() < 1e-8 {
		direction = spatial.NewPosition(1, 0, 0)
	}

	simplex.push(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Neg()
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		point := MinkowskiSupport(a, b, direction)

		// the new point does not pass the origin: separated
		if point.Dot(direction) <= 0 {
			return false
		}

		simplex.push(point)
		if simplex.enclose(&direction) {
			return true
		}
	}

	return false
}

// enclose reduces the simplex to the feature closest to the origin and updates the search
// direction. It returns true once a tetrahedron contains the origin.
func (s *Simplex) enclose(direction *spatial.Position) bool {
	switch s.Count {
	case 2:
		return s.line(direction)
	case 3:
		return s.triangle(direction)
	case 4:
		return s.tetrahedron(direction)
	}
	return false
}

func (s *Simplex) line(direction *spatial.Position) bool {
	a, b := s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ao := a.Neg()

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		s.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		s.set(a)
		*direction = ao
		return false
	}

	perpendicular := ab.Cross(ao).Cross(ab)
	if perpendicular.LenSqr() < 1e-8 {
		// origin on the segment
		return true
	}
	*direction = perpendicular
	return false
}

func (s *Simplex) triangle(direction *spatial.Position) bool {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Neg()
	abc := ab.Cross(ac)

	// collinear: fall back to the newest edge
	if abc.LenSqr() < 1e-10 {
		s.set(b, a)
		return s.line(direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// keep the winding so the normal faces the origin
		s.set(b, c, a)
		*direction = abc.Neg()
	}
	return false
}

func (s *Simplex) tetrahedron(direction *spatial.Position) bool {
	a, b, c, d := s.Points[3], s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Neg()

	// face normals oriented away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		s.set(c, b, a)
		return s.triangle(direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.set(c, b, a)
		return s.triangle(direction)
	case acd.Dot(ao) > 0:
		s.set(d, c, a)
		return s.triangle(direction)
	case adb.Dot(ao) > 0:
		s.set(b, d, a)
		return s.triangle(direction)
	}

	return true
}

func outward(normal, towardOpposite spatial.Position) spatial.Position {
	if normal.Dot(towardOpposite) > 0 {
		return normal.Neg()
	}
	return normal
}
