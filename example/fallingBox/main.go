package main

import (
	"fmt"

	solver "github.com/Jim-Eckerlein/constraints-solver"
	"github.com/Jim-Eckerlein/constraints-solver/actor"
	"github.com/Jim-Eckerlein/constraints-solver/spatial"
)

// SetupScene creates a unit cube two meters above the ground plane
func SetupScene() (*solver.World, *actor.RigidBody, *actor.RigidBody, *solver.Events) {
	events := solver.NewEvents()
	integrator := solver.NewIntegrator(solver.DEFAULT_SUBSTEPS, solver.StandardGravity, solver.WithEvents(events))

	// Ground plane z = 0, normal pointing up
	plane := actor.NewRigidBody(
		actor.NewPlane(spatial.NewPosition(0, 0, 1), 0),
		spatial.IdentitySpace(),
		actor.Static(),
		actor.WithName("ground"),
	)

	// Cube of side 1, its bottom face starts 1.5 above the plane
	cube := actor.NewRigidBody(
		actor.NewBox(spatial.NewPosition(0.5, 0.5, 0.5)),
		spatial.NewSpace(spatial.NewPosition(0, 0, 2), spatial.Identity()),
		actor.Dynamic(1),
		actor.WithName("cube"),
	)

	return solver.NewWorld(integrator, plane, cube), plane, cube, events
}

func main() {
	fmt.Println("Falling cube")
	fmt.Println("============")

	world, plane, cube, events := SetupScene()
	events.Subscribe(solver.CONTACT_ENTER, func(event solver.Event) {
		fmt.Printf("  contact: %s / %s\n", event.BodyA.Name, event.BodyB.Name)
	})

	fmt.Printf("Plane: direction %v, offset %v\n", plane.Collider.Direction(), plane.Collider.Offset())
	fmt.Printf("Cube:  position %v\n", cube.Frame.Position)
	fmt.Printf("Gravity: %v, sub-steps: %d\n\n", world.Integrator.Gravity, world.Integrator.SubSteps)

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 180

	for step := 0; step < maxSteps; step++ {
		world.Step(dt)

		if (step+1)%15 == 0 {
			fmt.Printf("frame %3d  z=%.4f  vz=%+.4f  |w|=%.2e\n",
				step+1,
				cube.Frame.Position.Z(),
				cube.LinearVelocity.Z(),
				cube.AngularVelocity.Len(),
			)
		}
	}

	if err := world.Check(); err != nil {
		fmt.Printf("\nbroken state: %v\n", err)
		return
	}
	fmt.Printf("\nresting at z=%.4f\n", cube.Frame.Position.Z())
}
