package ui

import (
	"fmt"
	"image"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/connect4play/internal/board"
)

// discSVG is a disc with a raised rim and a soft highlight. The three
// parameters are the fill, rim and groove colors.
const discSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<circle cx="50" cy="50" r="47" fill="%[2]s"/>
<circle cx="50" cy="50" r="42" fill="%[1]s"/>
<circle cx="50" cy="50" r="30" fill="none" stroke="%[3]s" stroke-width="4"/>
<ellipse cx="38" cy="32" rx="15" ry="8" fill="#ffffff" fill-opacity="0.3"/>
</svg>`

var discColors = map[board.Side][3]string{
	board.First:  {"#e53935", "#b71c1c", "#c62828"},
	board.Second: {"#fdd835", "#f9a825", "#fbc02d"},
}

// SpriteManager renders the disc sprites once and caches them.
type SpriteManager struct {
	discs       map[board.Side]*ebiten.Image
	size        int     // Logical disc diameter
	renderScale float64 // Discs are rasterized larger and scaled down
}

// NewSpriteManager creates discs of the given logical diameter.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		discs:       make(map[board.Side]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
	}
	sm.loadDiscs()
	return sm
}

func (sm *SpriteManager) loadDiscs() {
	renderSize := int(float64(sm.size) * sm.renderScale)
	for side, c := range discColors {
		src := fmt.Sprintf(discSVG, c[0], c[1], c[2])
		icon, err := oksvg.ReadIconStream(strings.NewReader(src))
		if err != nil {
			log.Error().Err(err).Stringer("side", side).Msg("parse disc svg")
			continue
		}
		icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

		rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
		scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
		raster := rasterx.NewDasher(renderSize, renderSize, scanner)
		icon.Draw(raster, 1.0)

		sm.discs[side] = ebiten.NewImageFromImage(rgba)
	}
}

// DrawDisc draws a disc centered on logical (cx, cy). alpha below 1 draws a
// translucent preview.
func (sm *SpriteManager) DrawDisc(screen *ebiten.Image, side board.Side, cx, cy float64, alpha float32) {
	sprite := sm.discs[side]
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := UIScale / sm.renderScale
	half := float64(sm.size) / 2
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((cx-half)*UIScale, (cy-half)*UIScale)
	op.ColorScale.ScaleAlpha(alpha)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the logical disc diameter.
func (sm *SpriteManager) Size() int {
	return sm.size
}
