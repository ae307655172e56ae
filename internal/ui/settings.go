package ui

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

// Settings modal dimensions
const (
	SettingsWidth  = 420
	SettingsHeight = 380
	SettingsPadX   = 24
)

// SettingsModal edits the stored preferences.
type SettingsModal struct {
	visible bool
	box     rect

	usernameInput  *TextInput
	difficultyBtns *ButtonGroup
	firstCheckbox  *Checkbox
	soundCheckbox  *Checkbox
	saveBtn        *Button
	cancelBtn      *Button

	prefs  storage.UserPreferences
	onSave func(*storage.UserPreferences)
}

// NewSettingsModal creates a new settings modal.
func NewSettingsModal() *SettingsModal {
	sm := &SettingsModal{
		box: rect{
			X: (ScreenWidth - SettingsWidth) / 2,
			Y: (ScreenHeight - SettingsHeight) / 2,
			W: SettingsWidth,
			H: SettingsHeight,
		},
	}

	x := sm.box.X + SettingsPadX
	w := SettingsWidth - SettingsPadX*2
	y := sm.box.Y + 76
	sm.usernameInput = NewTextInput(x, y, w, 36, "Your name", 20)

	y += 36 + 44
	sm.difficultyBtns = NewButtonGroup(x, y, tierTabs, int(engine.Medium), w/len(tierTabs), 34)

	y += 34 + 36
	sm.firstCheckbox = NewCheckbox(x, y, "I play first (Red)", true)
	sm.soundCheckbox = NewCheckbox(x, y+34, "Sound effects", true)

	btnW, btnH := 100, 38
	btnY := sm.box.Y + SettingsHeight - 20 - btnH
	right := sm.box.X + SettingsWidth - SettingsPadX
	sm.cancelBtn = NewButton(right-2*btnW-12, btnY, btnW, btnH, "Cancel", StyleSecondary, sm.Hide)
	sm.saveBtn = NewButton(right-btnW, btnY, btnW, btnH, "Save", StylePrimary, sm.save)
	return sm
}

// Show opens the modal on a copy of prefs. onSave receives the edited copy.
func (sm *SettingsModal) Show(prefs *storage.UserPreferences, onSave func(*storage.UserPreferences)) {
	sm.visible = true
	sm.prefs = *prefs
	sm.onSave = onSave

	sm.usernameInput.Value = prefs.Username
	if d, err := engine.ParseDifficulty(prefs.Difficulty); err == nil {
		sm.difficultyBtns.Selected = int(d)
	}
	sm.firstCheckbox.Checked = prefs.HumanFirst
	sm.soundCheckbox.Checked = prefs.SoundEnabled
}

// Hide closes the modal without saving.
func (sm *SettingsModal) Hide() {
	sm.visible = false
	sm.usernameInput.SetFocused(false)
}

// IsVisible returns true if the modal is visible.
func (sm *SettingsModal) IsVisible() bool {
	return sm.visible
}

func (sm *SettingsModal) save() {
	prefs := sm.prefs
	prefs.Username = strings.TrimSpace(sm.usernameInput.Value)
	if prefs.Username == "" {
		prefs.Username = "Player"
	}
	prefs.Difficulty = engine.Difficulty(sm.difficultyBtns.Selected).String()
	prefs.HumanFirst = sm.firstCheckbox.Checked
	prefs.SoundEnabled = sm.soundCheckbox.Checked
	if sm.onSave != nil {
		sm.onSave(&prefs)
	}
	sm.Hide()
}

// Update handles input while the modal is open. The modal consumes all
// input, so it returns true whenever it is visible.
func (sm *SettingsModal) Update(input *InputHandler) bool {
	if !sm.visible {
		return false
	}

	typing := sm.usernameInput.Update(input)
	switch {
	case !typing && KeyJustPressed(ebiten.KeyEscape):
		sm.Hide()
		return true
	case KeyJustPressed(ebiten.KeyEnter, ebiten.KeyNumpadEnter):
		sm.save()
		return true
	}

	sm.difficultyBtns.Update(input)
	sm.firstCheckbox.Update(input)
	sm.soundCheckbox.Update(input)
	if !sm.saveBtn.Update(input) {
		sm.cancelBtn.Update(input)
	}
	return true
}

// IsHoveringClickable reports whether the cursor is over a control.
func (sm *SettingsModal) IsHoveringClickable() bool {
	return sm.visible && (sm.saveBtn.IsHovered() || sm.cancelBtn.IsHovered() || sm.difficultyBtns.IsHovered())
}

// Draw renders the modal over a frosted backdrop.
func (sm *SettingsModal) Draw(screen *ebiten.Image, glass *GlassEffect) {
	if !sm.visible {
		return
	}
	glass.DrawModalBackground(screen)
	glass.DrawModalBox(screen, sm.box)

	drawTextCentered(screen, "Settings", BoldFace(), sm.box.X+SettingsWidth/2, sm.box.Y+26, textPrimary)
	DrawDivider(screen, sm.box.X, sm.box.Y+50, SettingsWidth)

	x := sm.box.X + SettingsPadX
	DrawSectionHeader(screen, "PLAYER NAME", x, sm.usernameInput.Y-12)
	DrawSectionHeader(screen, "COMPUTER DIFFICULTY", x, sm.difficultyBtns.Y-12)
	DrawSectionHeader(screen, "GAME", x, sm.firstCheckbox.Y-14)

	sm.usernameInput.Draw(screen)
	sm.difficultyBtns.Draw(screen)
	sm.firstCheckbox.Draw(screen)
	sm.soundCheckbox.Draw(screen)
	sm.saveBtn.Draw(screen)
	sm.cancelBtn.Draw(screen)
}
