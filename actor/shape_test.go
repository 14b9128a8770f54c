package actor

import (
	"math"
	"testing"

	"github.com/Jim-Eckerlein/constraints-solver/spatial"
	"go.viam.com/test"
)

// =============================================================================
// Construction
// =============================================================================

func TestNewBox(t *testing.T) {
	box := NewBox(spatial.NewPosition(1, 2, 3))

	test.That(t, box.Kind(), test.ShouldEqual, ColliderBox)
	test.That(t, box.HalfExtents(), test.ShouldResemble, spatial.NewPosition(1, 2, 3))
	test.That(t, box.Kind().String(), test.ShouldEqual, "box")
}

func TestNewBox_InvalidExtents(t *testing.T) {
	for _, extents := range []spatial.Position{
		spatial.NewPosition(0, 1, 1),
		spatial.NewPosition(1, -1, 1),
		spatial.NewPosition(1, 1, math.NaN()),
		spatial.NewPosition(math.Inf(1), 1, 1),
	} {
		test.That(t, func() { NewBox(extents) }, test.ShouldPanic)
	}
}

func TestNewPlane(t *testing.T) {
	plane := NewPlane(spatial.NewPosition(0, 3, 4), 2)

	test.That(t, plane.Kind(), test.ShouldEqual, ColliderPlane)
	test.That(t, plane.Direction().ApproxEqual(spatial.NewPosition(0, 0.6, 0.8), 1e-12), test.ShouldBeTrue)
	test.That(t, plane.Offset(), test.ShouldEqual, 2.0)
	test.That(t, plane.Kind().String(), test.ShouldEqual, "plane")
}

func TestNewPlane_InvalidDirection(t *testing.T) {
	test.That(t, func() { NewPlane(spatial.Zero(), 0) }, test.ShouldPanic)
	test.That(t, func() { NewPlane(spatial.NewPosition(math.NaN(), 0, 1), 0) }, test.ShouldPanic)
}

// =============================================================================
// Geometry
// =============================================================================

func TestCorners_IndexOrder(t *testing.T) {
	corners := NewBox(spatial.NewPosition(1, 2, 3)).Corners()

	want := [8]spatial.Position{
		{-1, -2, -3},
		{1, -2, -3},
		{-1, 2, -3},
		{1, 2, -3},
		{-1, -2, 3},
		{1, -2, 3},
		{-1, 2, 3},
		{1, 2, 3},
	}
	test.That(t, corners, test.ShouldResemble, want)
}

func TestSignedDistance(t *testing.T) {
	plane := NewPlane(spatial.NewPosition(0, 0, 1), 1)

	test.That(t, plane.SignedDistance(spatial.NewPosition(5, 5, 3)), test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, plane.SignedDistance(spatial.NewPosition(0, 0, 1)), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, plane.SignedDistance(spatial.NewPosition(0, 0, -1)), test.ShouldAlmostEqual, -2, 1e-12)
}

func TestSupport_Box(t *testing.T) {
	box := NewBox(spatial.NewPosition(1, 2, 3))

	tests := []struct {
		direction spatial.Position
		want      spatial.Position
	}{
		{spatial.NewPosition(1, 1, 1), spatial.NewPosition(1, 2, 3)},
		{spatial.NewPosition(-1, 1, -1), spatial.NewPosition(-1, 2, -3)},
		{spatial.NewPosition(0, -5, 0), spatial.NewPosition(1, -2, 3)},
	}

	for _, tt := range tests {
		test.That(t, box.Support(tt.direction), test.ShouldResemble, tt.want)
	}
}

func TestInertia_Box(t *testing.T) {
	// unit cube of mass 12: I = (12/12) * (1 + 1) on every axis
	inertia := NewBox(spatial.NewPosition(0.5, 0.5, 0.5)).Inertia(12)

	test.That(t, inertia.At(0, 0), test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, inertia.At(1, 1), test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, inertia.At(2, 2), test.ShouldAlmostEqual, 2, 1e-12)
	test.That(t, inertia.At(0, 1), test.ShouldEqual, 0.0)

	// 2 x 4 x 6 box of mass 1
	inertia = NewBox(spatial.NewPosition(1, 2, 3)).Inertia(1)
	test.That(t, inertia.At(0, 0), test.ShouldAlmostEqual, (16.0+36.0)/12, 1e-12)
	test.That(t, inertia.At(1, 1), test.ShouldAlmostEqual, (4.0+36.0)/12, 1e-12)
	test.That(t, inertia.At(2, 2), test.ShouldAlmostEqual, (4.0+16.0)/12, 1e-12)
}
