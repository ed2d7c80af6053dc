package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "draw physics shapes and the obstruction probe")
	watch := flag.Bool("watch", false, "reload grapple tuning and hook scripts from prefabs/ on change")
	levelName := flag.String("level", "course", "level name in levels/ (basename, .json optional)")
	hooks := flag.String("hooks", "grapple_hooks.tengo", "grapple hook script in prefabs/scripts (empty disables)")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("grapplehook")

	game, err := NewGame(GameOptions{
		Level: *levelName,
		Debug: *debug,
		Watch: *watch,
		Hooks: *hooks,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
