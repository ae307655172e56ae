package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler snapshots mouse and keyboard state once per frame.
type InputHandler struct {
	mouseX, mouseY   int // Logical coordinates (unscaled)
	leftPressed      bool
	leftJustPressed  bool
	leftJustReleased bool
	wheelY           float64
	chars            []rune
}

// NewInputHandler creates a new input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update reads this frame's input. Call it once at the top of Game.Update.
func (ih *InputHandler) Update() {
	rawX, rawY := ebiten.CursorPosition()
	scale := max(UIScale, 1.0)
	ih.mouseX = int(float64(rawX) / scale)
	ih.mouseY = int(float64(rawY) / scale)

	ih.leftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	ih.leftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	ih.leftPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	_, ih.wheelY = ebiten.Wheel()
	ih.chars = ebiten.AppendInputChars(ih.chars[:0])
}

// MousePosition returns the cursor in logical coordinates.
func (ih *InputHandler) MousePosition() (int, int) {
	return ih.mouseX, ih.mouseY
}

func (ih *InputHandler) IsLeftJustPressed() bool {
	return ih.leftJustPressed
}

func (ih *InputHandler) IsLeftJustReleased() bool {
	return ih.leftJustReleased
}

func (ih *InputHandler) IsLeftPressed() bool {
	return ih.leftPressed
}

// WheelY returns the vertical scroll of this frame.
func (ih *InputHandler) WheelY() float64 {
	return ih.wheelY
}

// Chars returns the characters typed this frame.
func (ih *InputHandler) Chars() []rune {
	return ih.chars
}

// Hover reports whether the cursor is inside r.
func (ih *InputHandler) Hover(r rect) bool {
	return r.contains(ih.mouseX, ih.mouseY)
}

// ReleasedIn reports whether the left button was released inside r.
func (ih *InputHandler) ReleasedIn(r rect) bool {
	return ih.leftJustReleased && ih.Hover(r)
}

// KeyJustPressed reports whether any of keys went down this frame.
func KeyJustPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	return false
}
