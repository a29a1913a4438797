package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"

	"famicore"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

const (
	screenWidth  = 256
	screenHeight = 240
)

//go:embed palette.json
var paletteJSON []byte

func loadPalette() [64]color.RGBA {
	var rows [][3]uint8
	if err := json.Unmarshal(paletteJSON, &rows); err != nil {
		log.Fatal(err)
	}
	var palette [64]color.RGBA
	for i, row := range rows {
		palette[i] = color.RGBA{R: row[0], G: row[1], B: row[2], A: 0xFF}
	}
	return palette
}

var controllerKeys = map[ebiten.Key]int{
	ebiten.KeyX:     famicore.ButtonA,
	ebiten.KeyZ:     famicore.ButtonB,
	ebiten.KeyA:     famicore.ButtonSelect,
	ebiten.KeyS:     famicore.ButtonStart,
	ebiten.KeyUp:    famicore.ButtonUp,
	ebiten.KeyDown:  famicore.ButtonDown,
	ebiten.KeyLeft:  famicore.ButtonLeft,
	ebiten.KeyRight: famicore.ButtonRight,
}

type Game struct {
	console     *famicore.Console
	palette     [64]color.RGBA
	frame       *[240][256]uint8
	paused      bool
	defaultFont font.Face
}

func (g *Game) Update() error {
	var buttons [8]bool
	for _, key := range inpututil.AppendPressedKeys(nil) {
		if button, ok := controllerKeys[key]; ok {
			buttons[button] = true
		}
	}
	g.console.SetButtons(0, buttons)

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.console.Reset()
	}

	if !g.paused {
		g.frame = g.console.StepFrame()
	}
	return nil
}

func (g *Game) getDefaultFont() font.Face {
	if g.defaultFont != nil {
		return g.defaultFont
	}
	tt, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		log.Fatal(err)
	}
	face, err := opentype.NewFace(tt, &opentype.FaceOptions{
		Size:    8,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		log.Fatal(err)
	}
	g.defaultFont = face
	return g.defaultFont
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.frame != nil {
		for y := 0; y < 240; y++ {
			for x := 0; x < 256; x++ {
				screen.Set(x, y, g.palette[g.frame[y][x]&0x3F])
			}
		}
	}
	if g.paused {
		text.Draw(screen, "PAUSED", g.getDefaultFont(), 4, 12,
			color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	}
}

func (g *Game) Layout(outsideWidth int, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	scale := flag.Int("scale", 3, "window scale factor")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("usage: famicore [-scale n] <rom.nes>")
		return
	}
	romPath := flag.Arg(0)

	cart, err := famicore.LoadCartridgeFile(romPath)
	if err != nil {
		log.Fatal(err)
	}
	console := famicore.NewConsole(cart)

	ebiten.SetWindowSize(screenWidth*(*scale), screenHeight*(*scale))
	ebiten.SetWindowTitle("famicore")
	if err := ebiten.RunGame(&Game{
		console: console,
		palette: loadPalette(),
	}); err != nil {
		log.Fatal(err)
	}
}
