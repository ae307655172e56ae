package ui

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/match"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast represents a notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager manages toast notifications.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

// Clear drops every toast.
func (tm *ToastManager) Clear() {
	tm.toasts = tm.toasts[:0]
}

// Draw renders the toasts stacked over the top of the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := RegularFace()
	if face == nil {
		return
	}

	y := BoardY + 12
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		alpha := max(0, fadeInOut(elapsed/t.Duration.Seconds(), 0.1, 0.15))

		var bg color.RGBA
		fg := color.RGBA{255, 255, 255, uint8(255 * alpha)}
		switch t.Type {
		case ToastWarning:
			bg = color.RGBA{180, 140, 20, uint8(220 * alpha)}
			fg = color.RGBA{40, 30, 0, uint8(255 * alpha)}
		case ToastError:
			bg = color.RGBA{180, 50, 50, uint8(220 * alpha)}
		case ToastSuccess:
			bg = color.RGBA{50, 150, 50, uint8(220 * alpha)}
		default:
			bg = color.RGBA{50, 100, 150, uint8(220 * alpha)}
		}

		w, h := MeasureText(t.Message, face)
		boxW := int(w/UIScale) + 24
		boxH := int(h/UIScale) + 16
		box := rect{X: BoardAreaWidth/2 - boxW/2, Y: y, W: boxW, H: boxH}
		fillRect(screen, box, bg)
		drawTextCentered(screen, t.Message, face, BoardAreaWidth/2, y+boxH/2, fg)

		y += boxH + 8
	}
}

// DropAnimation moves a newly played disc from above the board into its cell.
type DropAnimation struct {
	Cell      board.Cell
	Side      board.Side
	StartTime time.Time
	Duration  time.Duration
	landed    bool
}

// newDropAnimation times the fall so that discs accelerate like under gravity.
func newDropAnimation(cell board.Cell, side board.Side) *DropAnimation {
	rows := float64(board.Height - cell.Row)
	return &DropAnimation{
		Cell:      cell,
		Side:      side,
		StartTime: time.Now(),
		Duration:  time.Duration(math.Sqrt(rows) * float64(110*time.Millisecond)),
	}
}

// Progress returns the fallen share of the distance, from 0 to 1.
func (d *DropAnimation) Progress() float64 {
	t := time.Since(d.StartTime).Seconds() / d.Duration.Seconds()
	if t >= 1 {
		return 1
	}
	return t * t
}

// Done reports whether the disc has reached its cell.
func (d *DropAnimation) Done() bool {
	return time.Since(d.StartTime) >= d.Duration
}

// ShakeAnimation wobbles a column after a move into it was rejected.
type ShakeAnimation struct {
	Col       int
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// Offset returns the horizontal displacement, a damped sine wave.
func (s *ShakeAnimation) Offset() float64 {
	progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
	if progress >= 1 {
		return 0
	}
	return s.Intensity * math.Exp(-5*progress) * math.Sin(40*progress)
}

// FeedbackManager coordinates toasts, animations and sound.
type FeedbackManager struct {
	toasts *ToastManager
	audio  *AudioManager
	drop   *DropAnimation
	shake  *ShakeAnimation
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts: NewToastManager(),
		audio:  NewAudioManager(),
	}
}

// Update advances animations and removes expired effects.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	if fm.drop != nil && fm.drop.Done() && !fm.drop.landed {
		fm.drop.landed = true
		fm.audio.Play(SoundDrop)
	}
	if fm.shake != nil && time.Since(fm.shake.StartTime) >= fm.shake.Duration {
		fm.shake = nil
	}
}

// Draw renders the toasts.
func (fm *FeedbackManager) Draw(screen *ebiten.Image) {
	fm.toasts.Draw(screen)
}

// Reset clears every running effect, used when a game is restarted.
func (fm *FeedbackManager) Reset() {
	fm.toasts.Clear()
	fm.drop = nil
	fm.shake = nil
}

// Drop returns the running drop animation, or nil.
func (fm *FeedbackManager) Drop() *DropAnimation {
	if fm.drop == nil || fm.drop.Done() {
		return nil
	}
	return fm.drop
}

// ColumnShake returns the horizontal offset for a column.
func (fm *FeedbackManager) ColumnShake(col int) float64 {
	if fm.shake == nil || fm.shake.Col != col {
		return 0
	}
	return fm.shake.Offset()
}

// Toasts returns the toast manager.
func (fm *FeedbackManager) Toasts() *ToastManager {
	return fm.toasts
}

// Audio returns the audio manager for settings access.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// OnDrop starts the fall of a disc just played into cell.
func (fm *FeedbackManager) OnDrop(cell board.Cell, side board.Side) {
	fm.drop = newDropAnimation(cell, side)
}

// OnColumnFull reports a move into a full column.
func (fm *FeedbackManager) OnColumnFull(col int) {
	fm.shake = &ShakeAnimation{
		Col:       col,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 6,
	}
	fm.toasts.Show("Column is full", ToastWarning, 2*time.Second)
	fm.audio.Play(SoundInvalid)
}

// OnNotYourTurn reports a click while the engine is thinking.
func (fm *FeedbackManager) OnNotYourTurn() {
	fm.toasts.Show("Wait for the AI to move", ToastInfo, 1500*time.Millisecond)
	fm.audio.Play(SoundInvalid)
}

// OnGameEnd announces the result.
func (fm *FeedbackManager) OnGameEnd(outcome match.Outcome, message string) {
	switch outcome {
	case match.HumanWon, match.FirstWon, match.SecondWon:
		fm.toasts.Show(message, ToastSuccess, 4*time.Second)
		fm.audio.Play(SoundWin)
	case match.ComputerWon:
		fm.toasts.Show(message, ToastError, 4*time.Second)
		fm.audio.Play(SoundLoss)
	case match.Draw:
		fm.toasts.Show(message, ToastInfo, 4*time.Second)
		fm.audio.Play(SoundDraw)
	}
}

// OnError reports a failure that does not stop the game.
func (fm *FeedbackManager) OnError(message string) {
	fm.toasts.Show(message, ToastError, 3*time.Second)
}

// winPulse returns a 0..1 brightness that pulses once per second.
func winPulse() float64 {
	t := float64(time.Now().UnixMilli()%1000) / 1000
	return 0.5 + 0.5*math.Sin(2*math.Pi*t)
}

// drawWinRing outlines one disc of the winning line.
func drawWinRing(screen *ebiten.Image, cx, cy, r float64, c color.RGBA) {
	a := uint8(140 + 115*winPulse())
	vector.StrokeCircle(screen, float32(cx*UIScale), float32(cy*UIScale), float32(r*UIScale),
		float32(4*UIScale), color.RGBA{c.R, c.G, c.B, a}, true)
}
