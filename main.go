package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/zeozeozeo/gops2/emulator"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Printf("[gops2] PlayStation 2 emulator")

	psxMode := flag.Bool("PSXMODE", false, "boot in PS1 compatibility mode")
	headless := flag.Bool("headless", false, "run without a window")
	configPath := flag.String("config", "gops2.yaml", "path to the config file")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "usage: gops2 [flags] <bios> <disc>\n")
		flag.PrintDefaults()
		return -1
	}

	cfg, err := emulator.LoadConfig(*configPath)
	if err != nil {
		log.Printf("[gops2] %v", err)
		return 1
	}

	if *psxMode {
		cfg.PSXMode = true
	}
	if *headless {
		cfg.Headless = true
	}

	emu, err := emulator.New(flag.Arg(0), flag.Arg(1), cfg)
	if err != nil {
		log.Printf("[gops2] %v", err)
		return 1
	}

	// A fatal decode panics somewhere deep in the interpreter; turn
	// it into a single logged line and a non-zero exit
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[gops2] fatal: %v", r)
			os.Exit(1)
		}
	}()

	if cfg.Headless {
		if err := emu.Run(); err != nil {
			log.Printf("[gops2] %v", err)
		}
		return 0
	}

	renderer := emu.NewEbitenRenderer()
	emu.Renderer = renderer

	ebiten.SetWindowSize(640, 448)
	ebiten.SetWindowTitle("gops2")

	if err := ebiten.RunGame(emulator.NewGame(emu, renderer)); err != nil {
		log.Printf("[gops2] %v", err)
		return 1
	}

	return 0
}
