package main

import (
	"fmt"
	"log"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/grapplehook/common"
	"github.com/milk9111/grapplehook/ecs"
	"github.com/milk9111/grapplehook/ecs/entity"
	"github.com/milk9111/grapplehook/ecs/system"
	"github.com/milk9111/grapplehook/ecs/view"
	"github.com/milk9111/grapplehook/levels"
	"github.com/milk9111/grapplehook/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	grappleConfigName = "grapple.yaml"
)

type GameOptions struct {
	Level string
	Debug bool
	Watch bool
	Hooks string
}

type Game struct {
	opts GameOptions

	world   *ecs.World
	sched   *ecs.Scheduler
	physics *system.PhysicsSystem
	grapple *system.GrappleSystem
	render  *view.RenderSystem
	hud     *view.HUD
	watcher *prefabs.Watcher
}

func NewGame(opts GameOptions) (*Game, error) {
	lvl, err := levels.LoadLevelFromFS(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("load level %q: %w", opts.Level, err)
	}

	world := ecs.NewWorld()
	if _, err := entity.LoadCourse(world, lvl); err != nil {
		return nil, err
	}

	physics := system.NewPhysicsSystem()
	grapple := system.NewGrappleSystem(physics, system.WithGrappleHooks(opts.Hooks))
	hud := view.NewHUD()

	g := &Game{
		opts:    opts,
		world:   world,
		physics: physics,
		grapple: grapple,
		render:  view.NewRenderSystem(),
		hud:     hud,
	}
	// The HUD drains the event queue, so it goes last.
	g.sched = ecs.NewScheduler(
		view.NewInputSystem(),
		system.NewAimSystem(),
		grapple,
		system.NewPlayerControllerSystem(),
		system.NewMoverSystem(common.FixedStep),
		physics,
		system.NewAnchorSystem(),
		system.NewCameraSystem(baseWidth, baseHeight),
		hud,
	)

	if opts.Watch {
		watcher, err := prefabs.NewWatcher()
		if err != nil {
			log.Printf("watch: %v; hot reload disabled", err)
		} else {
			g.watcher = watcher
		}
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.pollChanges()
	g.sched.Update(g.world)
	return nil
}

// pollChanges applies pending prefab edits without blocking the frame.
func (g *Game) pollChanges() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	switch change.Kind {
	case prefabs.ChangeSpec:
		if path.Base(change.Name) != grappleConfigName {
			return
		}
		cfg, err := prefabs.LoadGrappleConfig(grappleConfigName)
		if err != nil {
			log.Printf("watch: keep current grapple tuning: %v", err)
			return
		}
		if err := g.grapple.ReloadConfig(g.world, cfg); err != nil {
			log.Printf("watch: keep current grapple tuning: %v", err)
			return
		}
		log.Printf("watch: reloaded %s; applies from the next grapple", grappleConfigName)
	case prefabs.ChangeScript:
		if g.opts.Hooks == "" || path.Base(change.Name) != path.Base(g.opts.Hooks) {
			return
		}
		if err := g.grapple.ReloadHooks(g.opts.Hooks); err != nil {
			log.Printf("watch: keep current hooks: %v", err)
			return
		}
		log.Printf("watch: reloaded %s", g.opts.Hooks)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
	if g.opts.Debug {
		view.DrawPhysicsDebug(g.physics.Space(), g.world, screen)
	}
	g.hud.Draw(g.world, screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
