// Package spatial holds the pure value types used to describe where rigid bodies are:
// positions, orientations and rigid transforms. Every operation returns a new value.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats/scalar"
)

// Position is a 3D vector. It is used for points, displacements, velocities and forces.
type Position mgl64.Vec3

// NewPosition builds a position from its components.
func NewPosition(x, y, z float64) Position {
	return Position{x, y, z}
}

// Zero is the origin.
func Zero() Position {
	return Position{}
}

func (p Position) X() float64 { return p[0] }
func (p Position) Y() float64 { return p[1] }
func (p Position) Z() float64 { return p[2] }

// Vec3 returns the position as a mathgl vector.
func (p Position) Vec3() mgl64.Vec3 {
	return mgl64.Vec3(p)
}

func (p Position) Add(o Position) Position {
	return Position(mgl64.Vec3(p).Add(mgl64.Vec3(o)))
}

func (p Position) Sub(o Position) Position {
	return Position(mgl64.Vec3(p).Sub(mgl64.Vec3(o)))
}

// Mul scales the position by s.
func (p Position) Mul(s float64) Position {
	return Position(mgl64.Vec3(p).Mul(s))
}

func (p Position) Neg() Position {
	return p.Mul(-1)
}

func (p Position) Dot(o Position) float64 {
	return mgl64.Vec3(p).Dot(mgl64.Vec3(o))
}

func (p Position) Cross(o Position) Position {
	return Position(mgl64.Vec3(p).Cross(mgl64.Vec3(o)))
}

func (p Position) Len() float64 {
	return mgl64.Vec3(p).Len()
}

func (p Position) LenSqr() float64 {
	return mgl64.Vec3(p).LenSqr()
}

// Normalize returns the unit vector pointing along p. The zero vector normalizes to itself.
func (p Position) Normalize() Position {
	l := p.Len()
	if l == 0 {
		return Position{}
	}
	return p.Mul(1 / l)
}

// Distance returns the euclidean distance between two points.
func (p Position) Distance(o Position) float64 {
	return p.r3().Distance(o.r3())
}

// Angle returns the unsigned angle between two vectors, in radians.
func (p Position) Angle(o Position) float64 {
	return p.r3().Angle(o.r3()).Radians()
}

// IsFinite reports whether no component is NaN or infinite.
func (p Position) IsFinite() bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares each component within an absolute tolerance.
func (p Position) ApproxEqual(o Position, eps float64) bool {
	for i := range p {
		if !scalar.EqualWithinAbs(p[i], o[i], eps) {
			return false
		}
	}
	return true
}

func (p Position) r3() r3.Vector {
	return r3.Vector{X: p[0], Y: p[1], Z: p[2]}
}
