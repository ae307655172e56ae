package ui

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

// Menu layout
const (
	MenuWidth = 560
	MenuX     = (ScreenWidth - MenuWidth) / 2
)

// MenuChoice is what the player picked on the menu.
type MenuChoice struct {
	Username   string
	Difficulty engine.Difficulty
	Mode       storage.GameMode
	HumanFirst bool
}

// MenuScene is the start screen: player name, mode, tier and who opens.
type MenuScene struct {
	welcome bool // First launch

	nameInput  *TextInput
	modes      *ButtonGroup
	tiers      *ButtonGroup
	firstCheck *Checkbox
	playBtn    *Button
	quitBtn    *Button

	onPlay func(MenuChoice)
	onQuit func()
}

// NewMenuScene creates the menu. onPlay runs when a game starts and onQuit
// when the player leaves the application.
func NewMenuScene(onPlay func(MenuChoice), onQuit func()) *MenuScene {
	m := &MenuScene{onPlay: onPlay, onQuit: onQuit}

	m.nameInput = NewTextInput(MenuX, 190, MenuWidth, 36, "Your name", 20)
	m.modes = NewButtonGroup(MenuX, 262, []string{"vs Computer", "vs Human"}, 0, MenuWidth/2, 36)

	names := make([]string, len(engine.Difficulties))
	for i, d := range engine.Difficulties {
		names[i] = titleCase(d.String())
	}
	m.tiers = NewButtonGroup(MenuX, 334, names, int(engine.Medium), MenuWidth/len(names), 36)
	m.firstCheck = NewCheckbox(MenuX, 412, "I play first (Red)", true)

	m.playBtn = NewButton(MenuX, 456, MenuWidth, 48, "Play", StylePrimary, m.play)
	m.quitBtn = NewButton(MenuX, 514, MenuWidth, 36, "Quit", StyleSecondary, onQuit)
	return m
}

// Load fills the widgets from stored preferences.
func (m *MenuScene) Load(prefs *storage.UserPreferences, welcome bool) {
	m.welcome = welcome
	if prefs == nil {
		return
	}
	if !welcome {
		m.nameInput.Value = prefs.Username
	}
	if d, err := engine.ParseDifficulty(prefs.Difficulty); err == nil {
		m.tiers.Selected = int(d)
	}
	m.modes.Selected = modeIndex(prefs.GameMode)
	m.firstCheck.Checked = prefs.HumanFirst
}

func (m *MenuScene) play() {
	name := strings.TrimSpace(m.nameInput.Value)
	if name == "" {
		name = "Player"
	}
	m.nameInput.SetFocused(false)
	m.onPlay(MenuChoice{
		Username:   name,
		Difficulty: engine.Difficulty(m.tiers.Selected),
		Mode:       modeAt(m.modes.Selected),
		HumanFirst: m.firstCheck.Checked,
	})
}

// Update handles menu input. Enter starts a game and Escape quits.
func (m *MenuScene) Update(input *InputHandler) {
	typing := m.nameInput.Update(input)
	m.modes.Update(input)
	if m.vsComputer() {
		m.tiers.Update(input)
		m.firstCheck.Update(input)
	}
	if m.playBtn.Update(input) || m.quitBtn.Update(input) {
		return
	}

	switch {
	case KeyJustPressed(ebiten.KeyEnter, ebiten.KeyNumpadEnter):
		m.play()
	case !typing && KeyJustPressed(ebiten.KeyEscape):
		m.onQuit()
	}
}

// IsHoveringClickable reports whether the cursor is over a control.
func (m *MenuScene) IsHoveringClickable() bool {
	return m.playBtn.IsHovered() || m.quitBtn.IsHovered() || m.modes.IsHovered() ||
		(m.vsComputer() && m.tiers.IsHovered())
}

func (m *MenuScene) vsComputer() bool {
	return modeAt(m.modes.Selected) == storage.ModeHumanVsComputer
}

// Draw renders the menu. stats may be nil.
func (m *MenuScene) Draw(screen *ebiten.Image, stats *storage.GameStats) {
	cx := ScreenWidth / 2
	drawTextCentered(screen, "Connect-Four", Face(44, true), cx, 70, textPrimary)

	subtitle := "Line up four discs before the computer does."
	if m.welcome {
		subtitle = "Welcome! Pick a name and a level to get started."
	}
	drawTextCentered(screen, subtitle, RegularFace(), cx, 120, textSecondary)

	DrawSectionHeader(screen, "NAME", MenuX, 176)
	m.nameInput.Draw(screen)

	DrawSectionHeader(screen, "MODE", MenuX, 248)
	m.modes.Draw(screen)

	if m.vsComputer() {
		DrawSectionHeader(screen, "DIFFICULTY", MenuX, 320)
		m.tiers.Draw(screen)
		drawText(screen, describeTier(engine.Difficulty(m.tiers.Selected)), Face(12, false), MenuX, 378, textMuted)
		m.firstCheck.Draw(screen)
	}

	m.playBtn.Draw(screen)
	m.quitBtn.Draw(screen)

	if stats != nil && stats.GamesPlayed > 0 {
		line := fmt.Sprintf("%d games played, %d won (%.0f%%)", stats.GamesPlayed, stats.Wins, stats.GetWinRate())
		drawTextCentered(screen, line, RegularFace(), cx, 580, textSecondary)
	}
	drawTextCentered(screen, "Enter: play    Esc: quit", Face(12, false), cx, 616, textMuted)
}

// describeTier summarizes how a tier plays.
func describeTier(d engine.Difficulty) string {
	limits := engine.DifficultySettings[d]
	var style string
	switch limits.Policy {
	case engine.PolicyProportional:
		style = "often picks weaker moves"
	case engine.PolicyNoise:
		style = fmt.Sprintf("plays with noise %.0f", limits.Noise)
	default:
		style = "always plays its best move"
	}
	if limits.MoveTime > 0 {
		style += fmt.Sprintf(", up to %s per move", limits.MoveTime)
	}
	return fmt.Sprintf("Looks %d moves ahead and %s.", limits.Depth, style)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
