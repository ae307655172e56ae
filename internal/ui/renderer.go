package ui

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/connect4play/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	Background  color.RGBA
	Frame       color.RGBA
	FrameShadow color.RGBA
	Hole        color.RGBA
	Hover       color.RGBA
	LastMove    color.RGBA
	WinRing     color.RGBA
	TextColor   color.RGBA
	MutedText   color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		Background:  color.RGBA{40, 44, 52, 255},
		Frame:       color.RGBA{25, 90, 190, 255},
		FrameShadow: color.RGBA{14, 52, 120, 255},
		Hole:        color.RGBA{28, 31, 37, 255},
		Hover:       color.RGBA{48, 213, 200, 51},
		LastMove:    color.RGBA{255, 255, 255, 200},
		WinRing:     color.RGBA{120, 255, 170, 255},
		TextColor:   color.RGBA{220, 220, 220, 255},
		MutedText:   color.RGBA{130, 135, 145, 255},
	}
}

// BoardView is everything the renderer needs to draw one frame of the board.
type BoardView struct {
	Position  *board.Position
	HoverCol  int        // -1 for none
	Ghost     board.Side // Disc previewed above HoverCol, NoSide for none
	LastMove  *board.Cell
	WinLine   []board.Cell
	Drop      *DropAnimation
	ShakeOf   func(col int) float64
	ShowHints bool
}

// Renderer handles all board drawing.
type Renderer struct {
	sprites *SpriteManager
	theme   *Theme
}

// NewRenderer creates a new renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		sprites: NewSpriteManager(CellSize - 12),
		theme:   DefaultTheme(),
	}
}

// Theme returns the active theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// CellCenter returns the logical center of a cell. Row 0 is the bottom row.
func CellCenter(col, row int) (float64, float64) {
	x := BoardX + col*CellSize + CellSize/2
	y := BoardY + (board.Height-1-row)*CellSize + CellSize/2
	return float64(x), float64(y)
}

// ColumnAt returns the column under logical (x, y), or -1. The strip above
// the board where the preview disc hovers counts as part of its column.
func ColumnAt(x, y int) int {
	if x < BoardX || x >= BoardX+BoardWidth {
		return -1
	}
	if y < BoardY-CellSize || y >= BoardY+BoardHeight {
		return -1
	}
	return (x - BoardX) / CellSize
}

// DrawBoard draws the frame, the discs and the overlays of v.
func (r *Renderer) DrawBoard(screen *ebiten.Image, v BoardView) {
	if v.HoverCol >= 0 {
		fillRect(screen, rect{X: BoardX + v.HoverCol*CellSize, Y: BoardY - CellSize, W: CellSize, H: BoardHeight + CellSize}, r.theme.Hover)
	}
	if v.Ghost != board.NoSide && v.HoverCol >= 0 {
		cx, _ := CellCenter(v.HoverCol, 0)
		r.sprites.DrawDisc(screen, v.Ghost, cx, float64(BoardY-CellSize/2), 0.45)
	}

	frame := rect{X: BoardX - 8, Y: BoardY - 8, W: BoardWidth + 16, H: BoardHeight + 16}
	fillRect(screen, rect{X: frame.X + 4, Y: frame.Y + 6, W: frame.W, H: frame.H}, r.theme.FrameShadow)
	fillRect(screen, frame, r.theme.Frame)

	hole := float32(r.sprites.Size()/2 + 2)
	for col := range board.Width {
		shake := 0.0
		if v.ShakeOf != nil {
			shake = v.ShakeOf(col)
		}
		for row := range board.Height {
			cx, cy := CellCenter(col, row)
			cx += shake
			vector.DrawFilledCircle(screen, float32(cx*UIScale), float32(cy*UIScale), hole*float32(UIScale), r.theme.Hole, true)

			side := v.Position.CellAt(col, row)
			if side == board.NoSide {
				continue
			}
			if v.Drop != nil && v.Drop.Cell == (board.Cell{Col: col, Row: row}) {
				continue
			}
			r.sprites.DrawDisc(screen, side, cx, cy, 1)
		}
	}

	if d := v.Drop; d != nil {
		cx, cy := CellCenter(d.Cell.Col, d.Cell.Row)
		top := float64(BoardY - CellSize/2)
		r.sprites.DrawDisc(screen, d.Side, cx, top+(cy-top)*d.Progress(), 1)
	}

	if v.LastMove != nil && v.Drop == nil && len(v.WinLine) == 0 {
		cx, cy := CellCenter(v.LastMove.Col, v.LastMove.Row)
		vector.DrawFilledCircle(screen, float32(cx*UIScale), float32(cy*UIScale), float32(5*UIScale), r.theme.LastMove, true)
	}

	if v.Drop == nil {
		radius := float64(r.sprites.Size())/2 + 1
		for _, c := range v.WinLine {
			cx, cy := CellCenter(c.Col, c.Row)
			drawWinRing(screen, cx, cy, radius, r.theme.WinRing)
		}
	}

	if v.ShowHints {
		face := Face(12, false)
		for col := range board.Width {
			cx, _ := CellCenter(col, 0)
			drawTextCentered(screen, strconv.Itoa(col+1), face, int(cx), BoardY+BoardHeight+18, r.theme.MutedText)
		}
	}
}
