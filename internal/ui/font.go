// Package ui implements the Connect-Four window using Ebitengine.
package ui

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
)

var (
	regularSource *text.GoTextFaceSource
	boldSource    *text.GoTextFaceSource

	// Faces are cached per rendered size, which already includes UIScale.
	faceCache = map[faceKey]*text.GoTextFace{}
)

type faceKey struct {
	bold bool
	size float64
}

func init() {
	var err error
	if regularSource, err = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err != nil {
		log.Error().Err(err).Msg("load regular font")
	}
	if boldSource, err = text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF)); err != nil {
		log.Error().Err(err).Msg("load bold font")
	}
}

// Face returns a face of the given logical size, scaled for the display.
// It returns nil if the fonts failed to load.
func Face(size float64, bold bool) *text.GoTextFace {
	src := regularSource
	if bold {
		src = boldSource
	}
	if src == nil {
		return nil
	}
	key := faceKey{bold: bold, size: size * UIScale}
	if f, ok := faceCache[key]; ok {
		return f
	}
	f := &text.GoTextFace{Source: src, Size: key.size}
	faceCache[key] = f
	return f
}

// RegularFace returns the body text face.
func RegularFace() *text.GoTextFace {
	return Face(defaultFontSize, false)
}

// BoldFace returns the heading face.
func BoldFace() *text.GoTextFace {
	return Face(titleFontSize, true)
}

// MeasureText returns the rendered width and height of s.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}

// drawText draws s with its top-left corner at logical (x, y).
func drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y int, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(x), scaleD(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// drawTextCentered draws s centered on logical (cx, cy).
func drawTextCentered(screen *ebiten.Image, s string, face *text.GoTextFace, cx, cy int, c color.Color) {
	if face == nil {
		return
	}
	w, h := MeasureText(s, face)
	op := &text.DrawOptions{}
	op.GeoM.Translate(scaleD(cx)-w/2, scaleD(cy)-h/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
