package emulator

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// An Ebitengine renderer that implements Renderer. The game loop
// drives the emulator: every Update advances the machine one video
// frame, Draw blits the latest GS output
type EbitenRenderer struct {
	emu *Emulator

	frame  *ebiten.Image
	width  int
	height int
}

// Returns a new Ebitengine renderer
func (emu *Emulator) NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{emu: emu}
}

func (renderer *EbitenRenderer) Update(fb []byte, width, height int) {
	if fb == nil {
		return
	}

	if renderer.frame == nil || renderer.width != width || renderer.height != height {
		renderer.frame = ebiten.NewImage(width, height)
		renderer.width = width
		renderer.height = height
	}

	renderer.frame.WritePixels(fb)
}

func (renderer *EbitenRenderer) Closed() bool {
	return false
}

// The ebiten.Game wrapper around the emulator
type Game struct {
	emu      *Emulator
	renderer *EbitenRenderer
}

// Returns a new game instance for ebiten.RunGame
func NewGame(emu *Emulator, renderer *EbitenRenderer) *Game {
	return &Game{emu: emu, renderer: renderer}
}

func (game *Game) Update() error {
	return game.emu.RunFrame()
}

func (game *Game) Draw(screen *ebiten.Image) {
	if game.renderer.frame == nil {
		ebitenutil.DebugPrint(screen, "waiting for video output")
		return
	}

	screen.DrawImage(game.renderer.frame, &ebiten.DrawImageOptions{})
}

func (game *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if game.renderer.width != 0 {
		return game.renderer.width, game.renderer.height
	}
	return 640, 448
}
