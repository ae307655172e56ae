package ui

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/match"
	"github.com/hailam/connect4play/internal/storage"
)

// UI Constants
const (
	ScreenWidth    = 960
	ScreenHeight   = 640
	BoardAreaWidth = 640
	PanelWidth     = ScreenWidth - BoardAreaWidth
	CellSize       = 80
	BoardWidth     = board.Width * CellSize
	BoardHeight    = board.Height * CellSize
	BoardX         = (BoardAreaWidth - BoardWidth) / 2
	BoardY         = 110
)

// UIScale is the global HiDPI scale factor for all UI drawing.
// Set by Game.Layout() and used by widgets and modals.
var UIScale = 1.0

// Scene is the screen currently shown.
type Scene int

const (
	SceneMenu Scene = iota
	SceneGame
)

// Options configures a Game.
type Options struct {
	Engine     *engine.Engine
	Storage    *storage.Storage  // nil disables persistence
	Difficulty engine.Difficulty // Used when no preference is stored
}

// aiResult is a finished engine decision. id ties it to the game it was
// requested for, so replies to abandoned games are dropped.
type aiResult struct {
	id  int
	dec engine.Decision
	err error
}

// Game implements ebiten.Game.
type Game struct {
	scene   Scene
	session *match.Session

	storage *storage.Storage
	prefs   *storage.UserPreferences
	stats   *storage.GameStats

	// Components
	renderer      *Renderer
	input         *InputHandler
	panel         *Panel
	feedback      *FeedbackManager
	menu          *MenuScene
	settingsModal *SettingsModal
	glass         *GlassEffect

	// AI Engine
	engine     *engine.Engine
	aiThinking bool
	aiResults  chan aiResult
	aiCancel   context.CancelFunc
	generation int

	hoverCol int
	quit     bool

	// HiDPI scaling
	scale float64
}

// NewGame creates the window state and opens on the menu.
func NewGame(opts Options) *Game {
	g := &Game{
		storage:   opts.Storage,
		engine:    opts.Engine,
		renderer:  NewRenderer(),
		input:     NewInputHandler(),
		feedback:  NewFeedbackManager(),
		glass:     NewGlassEffect(),
		aiResults: make(chan aiResult, 4),
		hoverCol:  -1,
	}
	if g.engine == nil {
		g.engine = engine.NewEngine(engine.Options{})
	}

	g.loadPreferences(opts.Difficulty)
	d := g.preferredDifficulty(opts.Difficulty)
	g.session = match.New(g.prefs.GameMode, g.prefs.HumanFirst, d)

	g.panel = NewPanel(g)
	g.settingsModal = NewSettingsModal()
	g.menu = NewMenuScene(g.startFromMenu, func() { g.quit = true })
	g.menu.Load(g.prefs, g.isFirstLaunch())
	g.feedback.Audio().SetEnabled(g.prefs.SoundEnabled)
	return g
}

// loadPreferences reads preferences and statistics, falling back to defaults.
func (g *Game) loadPreferences(fallback engine.Difficulty) {
	g.prefs = storage.DefaultPreferences()
	g.prefs.Difficulty = fallback.String()
	if g.storage == nil {
		return
	}

	prefs, err := g.storage.LoadPreferences()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load preferences")
	} else {
		g.prefs = prefs
	}
	g.refreshStats()
}

func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		log.Warn().Err(err).Msg("failed to save preferences")
	}
}

func (g *Game) refreshStats() {
	if g.storage == nil {
		return
	}
	stats, err := g.storage.LoadStats()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stats")
		return
	}
	g.stats = stats
}

func (g *Game) isFirstLaunch() bool {
	if g.storage == nil {
		return false
	}
	first, err := g.storage.IsFirstLaunch()
	if err != nil {
		log.Warn().Err(err).Msg("failed to check first launch")
		return false
	}
	return first
}

func (g *Game) preferredDifficulty(fallback engine.Difficulty) engine.Difficulty {
	d, err := engine.ParseDifficulty(g.prefs.Difficulty)
	if err != nil {
		return fallback
	}
	return d
}

// Update runs once per tick.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	if g.quit {
		return ebiten.Termination
	}
	g.checkAIMove()

	switch g.scene {
	case SceneMenu:
		g.menu.Update(g.input)
	case SceneGame:
		g.updateGame()
	}
	g.updateCursor()
	return nil
}

func (g *Game) updateGame() {
	if g.settingsModal.Update(g.input) {
		g.hoverCol = -1
		return
	}

	switch {
	case KeyJustPressed(ebiten.KeyR):
		g.NewGameAction()
		return
	case KeyJustPressed(ebiten.KeyQ, ebiten.KeyEscape):
		g.MenuAction()
		return
	case KeyJustPressed(ebiten.KeyU, ebiten.KeyBackspace):
		g.UndoAction()
		return
	}
	if col := digitColumn(); col >= 0 {
		g.humanDrop(col)
		return
	}

	if g.panel.HandleInput(g.input) {
		g.hoverCol = -1
		return
	}
	g.handleBoardInput()
}

var columnKeys = [board.Width][2]ebiten.Key{
	{ebiten.Key1, ebiten.KeyNumpad1},
	{ebiten.Key2, ebiten.KeyNumpad2},
	{ebiten.Key3, ebiten.KeyNumpad3},
	{ebiten.Key4, ebiten.KeyNumpad4},
	{ebiten.Key5, ebiten.KeyNumpad5},
	{ebiten.Key6, ebiten.KeyNumpad6},
	{ebiten.Key7, ebiten.KeyNumpad7},
}

// digitColumn returns the column for a pressed 1-7 key, or -1.
func digitColumn() int {
	for col, keys := range columnKeys {
		if KeyJustPressed(keys[:]...) {
			return col
		}
	}
	return -1
}

// handleBoardInput tracks the hovered column and drops a disc on release.
func (g *Game) handleBoardInput() {
	mx, my := g.input.MousePosition()
	g.hoverCol = ColumnAt(mx, my)
	if g.hoverCol >= 0 && g.input.IsLeftJustReleased() {
		g.humanDrop(g.hoverCol)
	}
}

func (g *Game) humanCanMove() bool {
	return !g.session.Over() && !g.aiThinking && !g.session.ComputerToMove()
}

func (g *Game) humanDrop(col int) {
	if g.session.Over() {
		return
	}
	if !g.humanCanMove() {
		g.feedback.OnNotYourTurn()
		return
	}
	if err := g.session.Play(col); err != nil {
		if errors.Is(err, board.ErrColumnFull) {
			g.feedback.OnColumnFull(col)
		}
		return
	}
	g.afterMove()
}

// afterMove animates the last disc, then ends the game or hands the turn
// to the engine.
func (g *Game) afterMove() {
	if cell, ok := g.session.LastMove(); ok {
		g.feedback.OnDrop(cell, g.session.Position().CellAt(cell.Col, cell.Row))
	}
	if g.session.Over() {
		g.finishGame()
		return
	}
	if g.session.ComputerToMove() {
		g.startAIThinking()
	}
}

func (g *Game) finishGame() {
	g.feedback.OnGameEnd(g.session.Outcome(), g.session.ResultText())
	if g.storage == nil {
		return
	}
	if _, err := g.session.Record(g.storage); err != nil {
		log.Warn().Err(err).Msg("failed to record game")
		g.feedback.OnError("Could not save the result")
		return
	}
	g.refreshStats()
	log.Info().
		Str("moves", g.session.MoveString()).
		Str("result", g.session.ResultText()).
		Stringer("difficulty", g.session.Difficulty()).
		Msg("game recorded")
}

// startAIThinking searches on a background goroutine. The result arrives
// on aiResults and is applied by checkAIMove on the UI goroutine.
func (g *Game) startAIThinking() {
	if g.aiThinking {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.aiCancel = cancel
	g.aiThinking = true

	id := g.generation
	pos := g.session.Position().Copy()
	d := g.session.Difficulty()
	log.Debug().Int("moves", pos.Moves()).Stringer("difficulty", d).Msg("engine thinking")

	go func() {
		dec, err := g.engine.SelectMove(ctx, pos, d)
		g.aiResults <- aiResult{id: id, dec: dec, err: err}
	}()
}

// checkAIMove applies a finished search. Replies to abandoned searches are
// drained every frame, so a search goroutine never stays blocked on send.
func (g *Game) checkAIMove() {
	for {
		select {
		case res := <-g.aiResults:
			if res.id == g.generation && g.aiThinking {
				g.applyAIMove(res)
			}
		default:
			return
		}
	}
}

func (g *Game) applyAIMove(res aiResult) {
	g.aiThinking = false
	g.aiCancel()
	if res.err != nil {
		log.Error().Err(res.err).Msg("engine failed to move")
		g.feedback.OnError("The AI could not move")
		return
	}
	log.Debug().
		Int("column", res.dec.Column+1).
		Int("score", res.dec.Score).
		Int("depth", res.dec.Depth).
		Uint64("nodes", res.dec.Nodes).
		Dur("elapsed", res.dec.Time).
		Msg("engine move")
	if err := g.session.Play(res.dec.Column); err != nil {
		log.Error().Err(err).Int("column", res.dec.Column+1).Msg("engine chose an illegal move")
		return
	}
	g.afterMove()
}

// cancelAI abandons a running search. Its reply is dropped when it arrives.
func (g *Game) cancelAI() {
	g.generation++
	if g.aiCancel != nil {
		g.aiCancel()
	}
	g.aiThinking = false
}

// NewGameAction restarts the current game with the same players.
func (g *Game) NewGameAction() {
	g.cancelAI()
	g.session.Restart()
	g.feedback.Reset()
	if g.session.ComputerToMove() {
		g.startAIThinking()
	}
}

// MenuAction abandons the game and returns to the menu.
func (g *Game) MenuAction() {
	g.cancelAI()
	g.session.Restart()
	g.feedback.Reset()
	g.settingsModal.Hide()
	g.menu.Load(g.prefs, false)
	g.scene = SceneMenu
}

// UndoAction takes back the last move, or the last pair against the AI.
func (g *Game) UndoAction() {
	if g.aiThinking {
		return
	}
	if !g.session.Undo() {
		return
	}
	g.feedback.Reset()
	if g.session.ComputerToMove() {
		g.startAIThinking()
	}
}

// SetMode switches between playing the computer and a second human. The
// board is cleared.
func (g *Game) SetMode(m storage.GameMode) {
	if m == g.session.Mode() {
		return
	}
	g.cancelAI()
	g.prefs.GameMode = m
	g.savePreferences()
	g.session = match.New(m, g.prefs.HumanFirst, g.session.Difficulty())
	g.feedback.Reset()
	if g.session.ComputerToMove() {
		g.startAIThinking()
	}
}

// SetDifficulty changes the tier used for the computer's next moves.
func (g *Game) SetDifficulty(d engine.Difficulty) {
	g.session.SetDifficulty(d)
	g.prefs.Difficulty = d.String()
	g.savePreferences()
}

// ShowSettings opens the settings modal.
func (g *Game) ShowSettings() {
	g.settingsModal.Show(g.prefs, func(p *storage.UserPreferences) {
		humanFirstChanged := p.HumanFirst != g.prefs.HumanFirst
		g.prefs = p
		g.savePreferences()
		g.feedback.Audio().SetEnabled(p.SoundEnabled)
		g.SetDifficulty(g.preferredDifficulty(g.session.Difficulty()))

		if humanFirstChanged && g.session.Mode() == storage.ModeHumanVsComputer {
			g.cancelAI()
			g.session = match.New(g.session.Mode(), p.HumanFirst, g.session.Difficulty())
			g.feedback.Reset()
			if g.session.ComputerToMove() {
				g.startAIThinking()
			}
		}
	})
}

func (g *Game) startFromMenu(c MenuChoice) {
	g.prefs.Username = c.Username
	g.prefs.Difficulty = c.Difficulty.String()
	g.prefs.GameMode = c.Mode
	g.prefs.HumanFirst = c.HumanFirst
	g.savePreferences()
	if g.storage != nil {
		if err := g.storage.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("failed to mark first launch")
		}
	}

	g.cancelAI()
	g.session = match.New(c.Mode, c.HumanFirst, c.Difficulty)
	g.feedback.Reset()
	g.scene = SceneGame
	log.Info().Str("player", c.Username).Stringer("difficulty", c.Difficulty).Bool("human_first", c.HumanFirst).Msg("game started")
	if g.session.ComputerToMove() {
		g.startAIThinking()
	}
}

// Session returns the game in progress.
func (g *Game) Session() *match.Session {
	return g.session
}

// Thinking reports whether the engine is searching.
func (g *Game) Thinking() bool {
	return g.aiThinking
}

// Username returns the player's name.
func (g *Game) Username() string {
	return g.prefs.Username
}

// Stats returns the stored statistics, or nil without storage.
func (g *Game) Stats() *storage.GameStats {
	return g.stats
}

func (g *Game) updateCursor() {
	var hovering bool
	switch {
	case g.scene == SceneMenu:
		hovering = g.menu.IsHoveringClickable()
	case g.settingsModal.IsVisible():
		hovering = g.settingsModal.IsHoveringClickable()
	default:
		hovering = g.panel.IsHoveringClickable() ||
			(g.hoverCol >= 0 && g.humanCanMove() && g.session.Position().CanPlay(g.hoverCol))
	}
	if hovering {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the current scene.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.renderer.Theme().Background)

	if g.scene == SceneMenu {
		g.menu.Draw(screen, g.stats)
		return
	}

	pos := g.session.Position()
	view := BoardView{
		Position:  pos,
		HoverCol:  -1,
		Ghost:     board.NoSide,
		Drop:      g.feedback.Drop(),
		ShakeOf:   g.feedback.ColumnShake,
		ShowHints: true,
	}
	if g.humanCanMove() && !g.settingsModal.IsVisible() {
		view.HoverCol = g.hoverCol
		if g.hoverCol >= 0 && pos.CanPlay(g.hoverCol) {
			view.Ghost = pos.SideToMove()
		}
	}
	if cell, ok := g.session.LastMove(); ok {
		view.LastMove = &cell
	}
	if line, ok := pos.WinningLine(); ok {
		view.WinLine = line[:]
	}
	g.renderer.DrawBoard(screen, view)

	title, c := "", g.renderer.Theme().TextColor
	switch {
	case g.session.Over():
		title, c = g.session.ResultText(), statusGameOver
	case g.aiThinking:
		title, c = "AI is thinking...", statusThinking
	}
	if title != "" {
		drawTextCentered(screen, title, Face(22, true), BoardAreaWidth/2, 22, c)
	}
	drawTextCentered(screen, "R: restart    Q: menu    U: undo    1-7: drop", Face(11, false),
		BoardAreaWidth/2, ScreenHeight-12, g.renderer.Theme().MutedText)

	g.feedback.Draw(screen)
	g.panel.Draw(screen)
	g.settingsModal.Draw(screen, g.glass)
}

// Layout reports the device-pixel screen size and records the scale factor.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scale = max(ebiten.Monitor().DeviceScaleFactor(), 1.0)
	UIScale = g.scale
	return int(ScreenWidth * g.scale), int(ScreenHeight * g.scale)
}

// Close stops any running search and saves preferences. The caller owns
// the storage and closes it.
func (g *Game) Close() {
	g.cancelAI()
	g.engine.Stop()
	g.savePreferences()
}
