package ui

import (
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Palette shared by the panel, the menu and the modals.
var (
	panelBg       = color.RGBA{32, 35, 40, 255}
	accentColor   = color.RGBA{76, 175, 120, 255}
	accentHover   = color.RGBA{96, 195, 140, 255}
	accentPressed = color.RGBA{56, 155, 100, 255}
	buttonBg      = color.RGBA{55, 60, 68, 255}
	buttonHoverBg = color.RGBA{65, 70, 78, 255}
	buttonPressBg = color.RGBA{40, 44, 50, 255}
	dividerColor  = color.RGBA{55, 60, 68, 255}
	textPrimary   = color.RGBA{235, 235, 240, 255}
	textSecondary = color.RGBA{160, 165, 175, 255}
	textMuted     = color.RGBA{110, 115, 125, 255}

	widgetBg          = color.RGBA{48, 52, 58, 255}
	widgetHoverBg     = color.RGBA{52, 56, 62, 255}
	widgetBorder      = color.RGBA{68, 72, 78, 255}
	widgetFocusBorder = color.RGBA{76, 175, 120, 255}
	inputPlaceholder  = color.RGBA{120, 125, 135, 255}

	tabActive   = color.RGBA{76, 132, 96, 255}
	tabInactive = color.RGBA{50, 54, 60, 255}
)

// rect is an axis-aligned box in logical coordinates.
type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Logical to device pixel conversions.
func scaleF(v int) float32 { return float32(float64(v) * UIScale) }
func scaleD(v int) float64 { return float64(v) * UIScale }
func scaleI(v int) int     { return int(float64(v) * UIScale) }

func fillRect(screen *ebiten.Image, r rect, c color.Color) {
	vector.DrawFilledRect(screen, scaleF(r.X), scaleF(r.Y), scaleF(r.W), scaleF(r.H), c, false)
}

func strokeRect(screen *ebiten.Image, r rect, width float32, c color.Color) {
	vector.StrokeRect(screen, scaleF(r.X), scaleF(r.Y), scaleF(r.W), scaleF(r.H), width*float32(UIScale), c, false)
}

// ButtonStyle selects a button's colors.
type ButtonStyle int

const (
	StyleSecondary ButtonStyle = iota
	StylePrimary
)

// Button is a clickable label. It fires on mouse release over the button.
type Button struct {
	rect
	Label    string
	Style    ButtonStyle
	Disabled bool
	OnClick  func()
	hovered  bool
	pressed  bool
}

// NewButton creates a button.
func NewButton(x, y, w, h int, label string, style ButtonStyle, onClick func()) *Button {
	return &Button{
		rect:    rect{X: x, Y: y, W: w, H: h},
		Label:   label,
		Style:   style,
		OnClick: onClick,
	}
}

// Update handles input and reports whether the button fired.
func (b *Button) Update(input *InputHandler) bool {
	b.hovered = !b.Disabled && input.Hover(b.rect)
	b.pressed = b.hovered && input.IsLeftPressed()
	if b.hovered && input.IsLeftJustReleased() {
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return false
}

// IsHovered returns true if the button is hovered.
func (b *Button) IsHovered() bool {
	return b.hovered
}

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	bg, border := buttonBg, widgetBorder
	switch {
	case b.Style == StylePrimary && b.pressed:
		bg, border = accentPressed, accentPressed
	case b.Style == StylePrimary && b.hovered:
		bg, border = accentHover, accentHover
	case b.Style == StylePrimary:
		bg, border = accentColor, accentPressed
	case b.pressed:
		bg = buttonPressBg
	case b.hovered:
		bg, border = buttonHoverBg, accentColor
	}
	fillRect(screen, b.rect, bg)
	strokeRect(screen, b.rect, 1, border)

	fg := textPrimary
	if b.Disabled {
		fg = textMuted
	}
	drawTextCentered(screen, b.Label, RegularFace(), b.X+b.W/2, b.Y+b.H/2, fg)
}

// TextInput is an editable single-line text field.
type TextInput struct {
	rect
	Value       string
	Placeholder string
	MaxLength   int
	focused     bool
	hovered     bool
	cursorBlink int
}

// NewTextInput creates a new text input widget.
func NewTextInput(x, y, w, h int, placeholder string, maxLen int) *TextInput {
	return &TextInput{
		rect:        rect{X: x, Y: y, W: w, H: h},
		Placeholder: placeholder,
		MaxLength:   maxLen,
	}
}

// Update edits the value while focused. It returns true while the field
// holds the focus, so callers can ignore keyboard shortcuts.
func (ti *TextInput) Update(input *InputHandler) bool {
	ti.hovered = input.Hover(ti.rect)
	if input.IsLeftJustPressed() {
		ti.focused = ti.hovered
	}
	if !ti.focused {
		return false
	}

	ti.cursorBlink = (ti.cursorBlink + 1) % 60
	for _, c := range input.Chars() {
		if ti.MaxLength == 0 || utf8.RuneCountInString(ti.Value) < ti.MaxLength {
			ti.Value += string(c)
		}
	}
	if KeyJustPressed(ebiten.KeyBackspace) && ti.Value != "" {
		_, size := utf8.DecodeLastRuneInString(ti.Value)
		ti.Value = ti.Value[:len(ti.Value)-size]
	}
	if KeyJustPressed(ebiten.KeyEscape, ebiten.KeyTab) {
		ti.focused = false
	}
	return true
}

// Draw renders the text input.
func (ti *TextInput) Draw(screen *ebiten.Image) {
	bg, border := widgetBg, widgetBorder
	switch {
	case ti.focused:
		border = widgetFocusBorder
	case ti.hovered:
		bg, border = widgetHoverBg, accentColor
	}
	fillRect(screen, ti.rect, bg)
	strokeRect(screen, ti.rect, 2, border)

	face := RegularFace()
	if face == nil {
		return
	}
	label, fg := ti.Value, textPrimary
	if label == "" {
		label, fg = ti.Placeholder, inputPlaceholder
	}
	_, h := MeasureText("Ag", face)
	textY := ti.Y + ti.H/2 - int(h/UIScale)/2
	drawText(screen, label, face, ti.X+10, textY, fg)

	if ti.focused && ti.cursorBlink < 30 {
		cursorX := ti.X + 10
		if ti.Value != "" {
			w, _ := MeasureText(ti.Value, face)
			cursorX += int(w/UIScale) + 2
		}
		fillRect(screen, rect{X: cursorX, Y: ti.Y + 8, W: 2, H: ti.H - 16}, textPrimary)
	}
}

// IsFocused returns true if the input is focused.
func (ti *TextInput) IsFocused() bool {
	return ti.focused
}

// SetFocused sets the focus state.
func (ti *TextInput) SetFocused(focused bool) {
	ti.focused = focused
}

// Checkbox is a toggleable checkbox widget.
type Checkbox struct {
	X, Y    int
	Label   string
	Checked bool
	hovered bool
}

// NewCheckbox creates a new checkbox.
func NewCheckbox(x, y int, label string, checked bool) *Checkbox {
	return &Checkbox{X: x, Y: y, Label: label, Checked: checked}
}

func (cb *Checkbox) bounds() rect {
	return rect{X: cb.X, Y: cb.Y, W: 220, H: 22}
}

// Update toggles the box on click and reports whether it changed.
func (cb *Checkbox) Update(input *InputHandler) bool {
	cb.hovered = input.Hover(cb.bounds())
	if cb.hovered && input.IsLeftJustPressed() {
		cb.Checked = !cb.Checked
		return true
	}
	return false
}

// Draw renders the checkbox.
func (cb *Checkbox) Draw(screen *ebiten.Image) {
	box := rect{X: cb.X, Y: cb.Y, W: 20, H: 20}
	bg, border := widgetBg, widgetBorder
	if cb.hovered {
		bg, border = widgetHoverBg, accentColor
	} else if cb.Checked {
		border = accentColor
	}
	fillRect(screen, box, bg)
	strokeRect(screen, box, 2, border)

	if cb.Checked {
		x, y := scaleF(cb.X), scaleF(cb.Y)
		s := float32(UIScale)
		vector.StrokeLine(screen, x+4*s, y+10*s, x+8*s, y+14*s, 2*s, accentColor, true)
		vector.StrokeLine(screen, x+8*s, y+14*s, x+16*s, y+6*s, 2*s, accentColor, true)
	}

	fg := textSecondary
	if cb.Checked || cb.hovered {
		fg = textPrimary
	}
	face := RegularFace()
	_, h := MeasureText(cb.Label, face)
	drawText(screen, cb.Label, face, cb.X+30, cb.Y+10-int(h/UIScale)/2, fg)
}

// ButtonGroup is a row of mutually exclusive toggle buttons.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
}

// NewButtonGroup creates a new button group.
func NewButtonGroup(x, y int, options []string, selected int, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
	}
}

func (bg *ButtonGroup) item(i int) rect {
	return rect{X: bg.X + i*bg.ButtonW, Y: bg.Y, W: bg.ButtonW, H: bg.ButtonH}
}

// Update selects the clicked option and reports whether the selection changed.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	bg.hovered = -1
	for i := range bg.Options {
		if !input.Hover(bg.item(i)) {
			continue
		}
		bg.hovered = i
		if input.IsLeftJustPressed() && bg.Selected != i {
			bg.Selected = i
			return true
		}
	}
	return false
}

// IsHovered reports whether any option is under the cursor.
func (bg *ButtonGroup) IsHovered() bool {
	return bg.hovered >= 0
}

// Draw renders the button group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	face := RegularFace()
	for i, label := range bg.Options {
		r := bg.item(i)
		fill, border, fg := tabInactive, widgetBorder, textSecondary
		switch {
		case i == bg.Selected:
			fill, border, fg = tabActive, tabActive, textPrimary
		case i == bg.hovered:
			fill, border = buttonHoverBg, accentColor
		}
		fillRect(screen, r, fill)
		strokeRect(screen, r, 1, border)
		drawTextCentered(screen, label, face, r.X+r.W/2, r.Y+r.H/2, fg)
	}
}

// DrawDivider draws a horizontal divider line.
func DrawDivider(screen *ebiten.Image, x, y, w int) {
	fillRect(screen, rect{X: x, Y: y, W: w, H: 1}, dividerColor)
}

// DrawSectionHeader draws a muted label vertically centered on y.
func DrawSectionHeader(screen *ebiten.Image, label string, x, y int) {
	face := RegularFace()
	_, h := MeasureText(label, face)
	drawText(screen, label, face, x, y-int(h/UIScale)/2, textMuted)
}
