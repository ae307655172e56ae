package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// One-dimensional 9-tap Gaussian blur along Direction, mixed with a tint.
// Running it twice with perpendicular directions gives a full blur.
var blurShader = []byte(`
//kage:unit pixels

package main

var Direction vec2
var Tint vec4

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
    var result vec4
    result += imageSrc0At(srcPos - 4.0*Direction) * 0.0162
    result += imageSrc0At(srcPos - 3.0*Direction) * 0.0540
    result += imageSrc0At(srcPos - 2.0*Direction) * 0.1218
    result += imageSrc0At(srcPos - 1.0*Direction) * 0.1954
    result += imageSrc0At(srcPos) * 0.2252
    result += imageSrc0At(srcPos + 1.0*Direction) * 0.1954
    result += imageSrc0At(srcPos + 2.0*Direction) * 0.1218
    result += imageSrc0At(srcPos + 3.0*Direction) * 0.0540
    result += imageSrc0At(srcPos + 4.0*Direction) * 0.0162
    return mix(result, vec4(Tint.rgb, 1.0), Tint.a)
}
`)

// GlassEffect frosts parts of the screen behind modal dialogs.
type GlassEffect struct {
	shader *ebiten.Shader
	first  *ebiten.Image
	second *ebiten.Image
}

// NewGlassEffect compiles the blur shader. When compilation fails, Frost
// falls back to a flat translucent overlay.
func NewGlassEffect() *GlassEffect {
	shader, err := ebiten.NewShader(blurShader)
	if err != nil {
		return &GlassEffect{}
	}
	return &GlassEffect{shader: shader}
}

// IsEnabled returns whether the blur shader is available.
func (ge *GlassEffect) IsEnabled() bool {
	return ge != nil && ge.shader != nil
}

func (ge *GlassEffect) ensureImages(w, h int) {
	if ge.first == nil || ge.first.Bounds().Dx() != w || ge.first.Bounds().Dy() != h {
		ge.first = ebiten.NewImage(w, h)
		ge.second = ebiten.NewImage(w, h)
	}
}

// Frost blurs the logical region r of screen in place and tints it.
// sigma is the tap spacing in device pixels.
func (ge *GlassEffect) Frost(screen *ebiten.Image, r rect, tint color.RGBA, sigma float64) {
	x, y, w, h := scaleI(r.X), scaleI(r.Y), scaleI(r.W), scaleI(r.H)
	if w <= 0 || h <= 0 {
		return
	}
	if !ge.IsEnabled() {
		fillRect(screen, r, tint)
		return
	}
	ge.ensureImages(w, h)

	ge.first.Clear()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(-x), float64(-y))
	ge.first.DrawImage(screen, op)

	ge.second.Clear()
	ge.second.DrawRectShader(w, h, ge.shader, &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{
			"Direction": []float32{float32(sigma), 0},
			"Tint":      []float32{0, 0, 0, 0},
		},
		Images: [4]*ebiten.Image{ge.first},
	})

	tintOp := &ebiten.DrawRectShaderOptions{
		Uniforms: map[string]any{
			"Direction": []float32{0, float32(sigma)},
			"Tint": []float32{
				float32(tint.R) / 255, float32(tint.G) / 255,
				float32(tint.B) / 255, float32(tint.A) / 255,
			},
		},
		Images: [4]*ebiten.Image{ge.second},
	}
	tintOp.GeoM.Translate(float64(x), float64(y))
	screen.DrawRectShader(w, h, ge.shader, tintOp)
}

// DrawModalBackground frosts the whole window behind a dialog.
func (ge *GlassEffect) DrawModalBackground(screen *ebiten.Image) {
	ge.Frost(screen, rect{W: ScreenWidth, H: ScreenHeight}, color.RGBA{10, 12, 16, 110}, 2.5)
}

// DrawModalBox draws a dialog's frosted body and border.
func (ge *GlassEffect) DrawModalBox(screen *ebiten.Image, r rect) {
	ge.Frost(screen, r, color.RGBA{38, 42, 50, 200}, 1.5)
	strokeRect(screen, r, 2, widgetBorder)
}
