// Package main runs a scene without a window and prints where every body ended up.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	solver "github.com/Jim-Eckerlein/constraints-solver"
	"github.com/Jim-Eckerlein/constraints-solver/loop"
	"github.com/Jim-Eckerlein/constraints-solver/scene"
)

const (
	// Flags.
	flagScene       = "scene"
	flagSeconds     = "seconds"
	flagFPS         = "fps"
	flagSubSteps    = "substeps"
	flagDiagnostics = "diagnostics"
	flagVerbose     = "verbose"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "headless",
		Usage:     "simulate a rigid body scene and print the final poses",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagScene,
				Aliases: []string{"s"},
				Usage:   "YAML scene file; the falling cube scene when empty",
			},
			&cli.Float64Flag{
				Name:  flagSeconds,
				Value: 3,
				Usage: "simulated time",
			},
			&cli.IntFlag{
				Name:  flagFPS,
				Value: 60,
				Usage: "displayed frames per simulated second",
			},
			&cli.IntFlag{
				Name:  flagSubSteps,
				Usage: "override the scene's sub-step count",
			},
			&cli.BoolFlag{
				Name:  flagDiagnostics,
				Usage: "check body state after every frame and fail on non-physical state",
			},
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			logger, err := newLogger(c.Bool(flagVerbose))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return run(c, logger, out)
		},
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	config.OutputPaths = []string{"stderr"}
	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "cannot build logger")
	}
	return logger.Sugar(), nil
}

func run(c *cli.Context, logger *zap.SugaredLogger, out io.Writer) error {
	s := scene.Default()
	if path := c.String(flagScene); path != "" {
		loaded, err := scene.Load(path)
		if err != nil {
			return err
		}
		s = loaded
	}
	if c.IsSet(flagSubSteps) {
		s.SubSteps = c.Int(flagSubSteps)
	}

	fps := c.Int(flagFPS)
	if fps <= 0 {
		return errors.Errorf("fps must be positive, got %d", fps)
	}
	seconds := c.Float64(flagSeconds)
	if seconds < 0 {
		return errors.Errorf("seconds must not be negative, got %v", seconds)
	}

	world, err := s.Build(logger, solver.WithDiagnostics(c.Bool(flagDiagnostics)))
	if err != nil {
		return err
	}

	presented := 0
	driver := &loop.Driver{
		World:     world,
		Logger:    logger,
		Presenter: loop.PresenterFunc(func(string, mgl64.Mat4) { presented++ }),
	}

	frames := int(seconds * float64(fps))
	frame := time.Second / time.Duration(fps)
	driver.MaxDelta = frame
	for i := 0; i < frames; i++ {
		driver.StepOnce(frame)
		if (i+1)%fps == 0 {
			logger.Debugw("simulated", "seconds", (i+1)/fps, "frames", i+1)
		}
	}
	logger.Infow("simulation done", "frames", driver.Frames, "seconds", seconds, "poses", presented)

	fmt.Fprintln(out, poseTable(world))

	if c.Bool(flagDiagnostics) {
		if err := world.Check(); err != nil {
			return errors.Wrap(err, "non-physical state")
		}
	}
	return nil
}

// poseTable lists each body with the translation of its final pose. Rows follow body order,
// so bodies sharing a name (or having none) keep their own pose.
func poseTable(world *solver.World) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Name", "Collider", "Translation", "Speed", "Spin"})
	for i, body := range world.Bodies {
		translation := body.Matrix().Col(3)
		t.AppendRow(table.Row{
			i,
			body.Name,
			body.Collider.Kind(),
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", translation[0], translation[1], translation[2]),
			fmt.Sprintf("%.4f", body.LinearVelocity.Len()),
			fmt.Sprintf("%.4f", body.AngularVelocity.Len()),
		})
	}
	return t.Render()
}
