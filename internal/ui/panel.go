package ui

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/match"
	"github.com/hailam/connect4play/internal/storage"
)

// Panel layout
const (
	PanelPadding  = 20
	ButtonHeight  = 40
	TabHeight     = 34
	MoveRowHeight = 24
	StatusHeight  = 70
)

var (
	moveRowAlt     = color.RGBA{38, 41, 47, 255}
	statusThinking = color.RGBA{100, 180, 255, 255}
	statusGameOver = color.RGBA{255, 200, 80, 255}
)

// Tier labels short enough for five tabs in the panel.
var tierTabs = []string{"Beg", "Easy", "Med", "Hard", "Max"}

// Panel is the side panel with game controls, move list and status.
type Panel struct {
	game *Game

	newGameBtn  *Button
	undoBtn     *Button
	menuBtn     *Button
	settingsBtn *Button
	modeTabs    *ButtonGroup // 0 = vs Computer, 1 = vs Human
	diffTabs    *ButtonGroup

	historyY   int
	scrollY    int
	maxScrollY int
}

// NewPanel creates the panel for g.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}

	x := BoardAreaWidth + PanelPadding
	w := PanelWidth - PanelPadding*2
	y := PanelPadding

	p.newGameBtn = NewButton(x, y, w, ButtonHeight, "New Game", StylePrimary, g.NewGameAction)
	y += ButtonHeight + 8

	third := (w - 16) / 3
	p.undoBtn = NewButton(x, y, third, TabHeight, "Undo", StyleSecondary, g.UndoAction)
	p.menuBtn = NewButton(x+third+8, y, third, TabHeight, "Menu", StyleSecondary, g.MenuAction)
	p.settingsBtn = NewButton(x+2*(third+8), y, third, TabHeight, "Settings", StyleSecondary, g.ShowSettings)
	y += TabHeight + 32

	p.modeTabs = NewButtonGroup(x, y, []string{"vs Computer", "vs Human"}, 0, w/2, TabHeight)
	y += TabHeight + 32

	p.diffTabs = NewButtonGroup(x, y, tierTabs, int(engine.Medium), w/len(tierTabs), TabHeight-2)
	y += TabHeight + 30

	p.historyY = y
	return p
}

func (p *Panel) historyRect() rect {
	return rect{X: BoardAreaWidth, Y: p.historyY, W: PanelWidth, H: ScreenHeight - StatusHeight - p.historyY - 8}
}

// HandleInput processes panel input. It returns true if the input was used.
func (p *Panel) HandleInput(input *InputHandler) bool {
	s := p.game.Session()
	p.modeTabs.Selected = modeIndex(s.Mode())
	p.diffTabs.Selected = int(s.Difficulty())
	p.undoBtn.Disabled = s.Over() || len(s.Moves()) == 0 || p.game.Thinking()

	if wheel := input.WheelY(); wheel != 0 && input.Hover(p.historyRect()) {
		p.scrollY = max(0, min(p.maxScrollY, p.scrollY-int(wheel*30)))
	}

	handled := false
	for _, b := range []*Button{p.newGameBtn, p.undoBtn, p.menuBtn, p.settingsBtn} {
		handled = b.Update(input) || handled
	}
	if p.modeTabs.Update(input) {
		p.game.SetMode(modeAt(p.modeTabs.Selected))
		handled = true
	}
	if s.Mode() == storage.ModeHumanVsComputer && p.diffTabs.Update(input) {
		p.game.SetDifficulty(engine.Difficulty(p.diffTabs.Selected))
		handled = true
	}
	mx, _ := input.MousePosition()
	return handled || mx >= BoardAreaWidth
}

// IsHoveringClickable reports whether the cursor is over a control.
func (p *Panel) IsHoveringClickable() bool {
	for _, b := range []*Button{p.newGameBtn, p.undoBtn, p.menuBtn, p.settingsBtn} {
		if b.IsHovered() {
			return true
		}
	}
	return p.modeTabs.IsHovered() || (p.game.Session().Mode() == storage.ModeHumanVsComputer && p.diffTabs.IsHovered())
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image) {
	fillRect(screen, rect{X: BoardAreaWidth, Y: 0, W: PanelWidth, H: ScreenHeight}, panelBg)
	fillRect(screen, rect{X: BoardAreaWidth, Y: 0, W: 1, H: ScreenHeight}, dividerColor)

	x := BoardAreaWidth + PanelPadding
	w := PanelWidth - PanelPadding*2

	p.newGameBtn.Draw(screen)
	p.undoBtn.Draw(screen)
	p.menuBtn.Draw(screen)
	p.settingsBtn.Draw(screen)

	DrawSectionHeader(screen, "MODE", x, p.modeTabs.Y-12)
	p.modeTabs.Draw(screen)

	if p.game.Session().Mode() == storage.ModeHumanVsComputer {
		DrawSectionHeader(screen, "DIFFICULTY", x, p.diffTabs.Y-12)
		p.diffTabs.Draw(screen)
	}

	DrawSectionHeader(screen, "MOVES", x, p.historyY-12)
	p.drawHistory(screen)

	DrawDivider(screen, x, ScreenHeight-StatusHeight, w)
	p.drawStatus(screen, x)
}

// drawHistory lists the moves two per row, red then yellow.
func (p *Panel) drawHistory(screen *ebiten.Image) {
	area := p.historyRect()
	moves := p.game.Session().Moves()
	rows := (len(moves) + 1) / 2
	p.maxScrollY = max(0, rows*MoveRowHeight-area.H)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	face := RegularFace()
	x := area.X + PanelPadding
	for row := range rows {
		y := area.Y + row*MoveRowHeight - p.scrollY
		if y < area.Y || y+MoveRowHeight > area.Y+area.H {
			continue
		}
		if row%2 == 1 {
			fillRect(screen, rect{X: x - 6, Y: y, W: area.W - 2*PanelPadding + 12, H: MoveRowHeight}, moveRowAlt)
		}
		_, h := MeasureText("0", face)
		ty := y + MoveRowHeight/2 - int(h/UIScale)/2
		drawText(screen, strconv.Itoa(row+1)+".", face, x, ty, textMuted)
		for k := range 2 {
			i := row*2 + k
			if i >= len(moves) {
				break
			}
			cx := x + 70 + k*90
			c := discColor(board.Side(k))
			vector.DrawFilledCircle(screen, scaleF(cx), scaleF(y+MoveRowHeight/2), scaleF(6), c, true)
			drawText(screen, "col "+strconv.Itoa(moves[i]+1), face, cx+12, ty, textPrimary)
		}
	}
}

func (p *Panel) drawStatus(screen *ebiten.Image, x int) {
	g := p.game
	s := g.Session()
	face := RegularFace()
	y := ScreenHeight - StatusHeight + 14

	status, c := "", textSecondary
	switch {
	case s.Over():
		status, c = s.ResultText(), statusGameOver
	case g.Thinking():
		status, c = "AI is thinking...", statusThinking
	case s.Mode() == storage.ModeHumanVsComputer:
		status = "Your move (" + match.SideName(s.HumanSide()) + ")"
	default:
		status = match.SideName(s.Position().SideToMove()) + " to move"
	}
	drawText(screen, status, BoldFace(), x, y, c)

	line := g.Username()
	if st := g.Stats(); st != nil && st.GamesPlayed > 0 {
		line = fmt.Sprintf("%s  %dW %dL %dD (%.0f%%)", line, st.Wins, st.Losses, st.Draws, st.GetWinRate())
	}
	drawText(screen, line, face, x, y+26, textSecondary)
}

func discColor(side board.Side) color.RGBA {
	if side == board.Second {
		return color.RGBA{253, 216, 53, 255}
	}
	return color.RGBA{229, 57, 53, 255}
}

func modeIndex(m storage.GameMode) int {
	if m == storage.ModeHumanVsHuman {
		return 1
	}
	return 0
}

func modeAt(i int) storage.GameMode {
	if i == 1 {
		return storage.ModeHumanVsHuman
	}
	return storage.ModeHumanVsComputer
}
