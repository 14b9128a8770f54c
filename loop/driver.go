// Package loop drives a solver.World at a fixed frame rate and hands every body's pose to a
// presentation layer after each frame.
package loop

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	solver "github.com/Jim-Eckerlein/constraints-solver"
)

const (
	DEFAULT_RATE = time.Second / 60
	// DEFAULT_MAX_DELTA keeps a single step short enough that bodies cannot tunnel through planes.
	DEFAULT_MAX_DELTA = time.Second / 30
)

// Presenter receives the model matrix of each body once per frame.
type Presenter interface {
	Present(name string, model mgl64.Mat4)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(name string, model mgl64.Mat4)

func (f PresenterFunc) Present(name string, model mgl64.Mat4) {
	f(name, model)
}

// Driver steps World once per tick of Clock.
// Zero fields take their defaults on first use; Presenter and Logger may be nil.
type Driver struct {
	Clock clock.Clock
	// Rate is the interval between frames
	Rate time.Duration
	// MaxDelta bounds the time simulated in one frame, whatever the wall clock says
	MaxDelta time.Duration

	World     *solver.World
	Presenter Presenter
	Logger    *zap.SugaredLogger

	// Frames counts the steps taken so far
	Frames int
}

func (d *Driver) defaults() {
	if d.Clock == nil {
		d.Clock = clock.New()
	}
	if d.Rate <= 0 {
		d.Rate = DEFAULT_RATE
	}
	if d.MaxDelta <= 0 {
		d.MaxDelta = DEFAULT_MAX_DELTA
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop().Sugar()
	}
}

// Run ticks until ctx is done. Each tick steps the world by the time elapsed since the
// previous one and presents the result. It returns the context's error.
func (d *Driver) Run(ctx context.Context) error {
	d.defaults()

	last := d.Clock.Now()
	ticker := d.Clock.Ticker(d.Rate)
	defer ticker.Stop()

	d.Logger.Debugw("driver started", "rate", d.Rate, "max_delta", d.MaxDelta, "bodies", len(d.World.Bodies))
	for {
		select {
		case <-ctx.Done():
			d.Logger.Debugw("driver stopped", "frames", d.Frames)
			return ctx.Err()
		case now := <-ticker.C:
			d.StepOnce(now.Sub(last))
			last = now
		}
	}
}

// StepOnce advances the world by dt, clamped to MaxDelta, and presents every body.
// Non-positive deltas are ignored.
func (d *Driver) StepOnce(dt time.Duration) {
	d.defaults()
	if dt <= 0 {
		return
	}
	if dt > d.MaxDelta {
		d.Logger.Debugw("frame delta clamped", "dt", dt, "max_delta", d.MaxDelta)
		dt = d.MaxDelta
	}

	d.World.Step(dt.Seconds())
	d.Frames++

	if d.Presenter == nil {
		return
	}
	for _, body := range d.World.Bodies {
		d.Presenter.Present(body.Name, body.Matrix())
	}
}
