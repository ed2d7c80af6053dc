// Command grapplesim runs the grapple headless against a single wall and
// prints a per-tick trace. It is used to tune grapple.yaml without a window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/milk9111/grapplehook/common"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/component"
	"github.com/milk9111/grapplehook/ecs/entity"
	"github.com/milk9111/grapplehook/ecs/system"
	"github.com/milk9111/grapplehook/grapple"
	"github.com/milk9111/grapplehook/prefabs"
)

const (
	startX = 100.0
	startY = 300.0
)

type simOptions struct {
	Distance float64
	Ticks    int
	Obstruct bool
	Platform bool
	Config   string
	Trace    bool
}

type simResult struct {
	Started bool
	Ended   bool
	Reason  grapple.ExitReason
	Ticks   int
	EndX    float64
	EndY    float64
	MaxSpd  float64
}

func main() {
	var opts simOptions
	flag.Float64Var(&opts.Distance, "distance", 600, "distance from the player to the wall face")
	flag.IntVar(&opts.Ticks, "ticks", 600, "maximum ticks to simulate")
	flag.BoolVar(&opts.Obstruct, "obstruct", false, "place a low block on the path that the sweep catches but the ray misses")
	flag.BoolVar(&opts.Platform, "platform", false, "grapple a rising platform instead of a wall")
	flag.StringVar(&opts.Config, "config", "grapple.yaml", "grapple tuning file in prefabs/")
	flag.BoolVar(&opts.Trace, "trace", true, "print one row per tick")
	flag.Parse()

	res, err := run(opts, os.Stdout, log.New(os.Stderr, "", log.Ltime))
	if err != nil {
		log.Fatal(err)
	}
	if !res.Started {
		fmt.Println("no target")
		os.Exit(1)
	}
	if !res.Ended {
		fmt.Printf("still attached after %d ticks\n", res.Ticks)
		os.Exit(1)
	}
	fmt.Printf("ended: %s after %d ticks at (%.1f, %.1f), peak speed %.0f\n", res.Reason, res.Ticks, res.EndX, res.EndY, res.MaxSpd)
}

func run(opts simOptions, out io.Writer, logger *log.Logger) (simResult, error) {
	if opts.Distance <= 0 {
		return simResult{}, fmt.Errorf("distance must be positive, got %v", opts.Distance)
	}
	if opts.Ticks <= 0 {
		return simResult{}, fmt.Errorf("ticks must be positive, got %d", opts.Ticks)
	}

	w := ecs.NewWorld()
	player, err := entity.NewPlayerAt(w, startX, startY)
	if err != nil {
		return simResult{}, err
	}
	if opts.Config != "" {
		cfg, err := prefabs.LoadGrappleConfig(opts.Config)
		if err != nil {
			return simResult{}, err
		}
		g, _ := ecs.Get(w, player, component.GrapplerComponent.Kind())
		g.Config = cfg
	}

	wallX := startX + opts.Distance
	if opts.Platform {
		if _, err := entity.NewPlatform(w, wallX+64, startY, 0, -300, 90); err != nil {
			return simResult{}, err
		}
	} else if _, err := entity.NewSolid(w, wallX+32, startY, 64, 800); err != nil {
		return simResult{}, err
	}
	if opts.Obstruct {
		// Top edge sits 10px below the ray.
		if _, err := entity.NewSolid(w, startX+opts.Distance/2, startY+26, 32, 32); err != nil {
			return simResult{}, err
		}
	}

	physics := system.NewPhysicsSystem()
	grappleSys := system.NewGrappleSystem(physics, system.WithGrappleLogger(logger))
	sched := ecs.NewScheduler(
		system.NewAimSystem(),
		grappleSys,
		system.NewMoverSystem(common.FixedStep),
		physics,
		system.NewAnchorSystem(),
	)

	input, _ := ecs.Get(w, player, component.InputComponent.Kind())
	input.CursorX = wallX + 32
	input.CursorY = startY
	input.GrapplePressed = true

	var tw *tabwriter.Writer
	if opts.Trace {
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "tick\tx\ty\tspeed\tanchor")
	}

	var res simResult
	for tick := 1; tick <= opts.Ticks && !res.Ended; tick++ {
		sched.Update(w)
		input.GrapplePressed = false
		res.Ticks = tick

		for _, evt := range w.Events().Drain() {
			ge, ok := evt.Data.(grapple.Event)
			if !ok {
				continue
			}
			switch ge.Kind {
			case grapple.EventStarted:
				res.Started = true
			case grapple.EventEnded:
				res.Ended = true
				res.Reason = ge.Reason
			}
		}
		if !res.Started {
			break
		}

		t, _ := ecs.Get(w, player, component.TransformComponent.Kind())
		res.EndX, res.EndY = t.X, t.Y
		ctrl, _ := grappleSys.Controller(player)
		speed := ctrl.Speed()
		if speed > res.MaxSpd {
			res.MaxSpd = speed
		}
		if tw != nil {
			anchor := "-"
			if p, ok := ctrl.AnchorPoint(); ok {
				anchor = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
			}
			fmt.Fprintf(tw, "%d\t%.1f\t%.1f\t%.0f\t%s\n", tick, t.X, t.Y, speed, anchor)
		}
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return res, err
		}
	}
	return res, nil
}
