// Package match tracks a single game between a human and the engine, or
// between two humans sharing the board.
package match

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

// Outcome is the state of a game from the players' point of view.
type Outcome int

const (
	Ongoing Outcome = iota
	HumanWon
	ComputerWon
	FirstWon  // Human vs human only
	SecondWon // Human vs human only
	Draw
)

// Recorder stores finished games.
type Recorder interface {
	RecordGame(result storage.GameResult) error
}

// Session is one game in progress.
type Session struct {
	pos        board.Position
	history    []int
	mode       storage.GameMode
	humanSide  board.Side
	difficulty engine.Difficulty
	started    time.Time
	recorded   bool
}

// New starts a game. humanFirst is ignored between two humans.
func New(mode storage.GameMode, humanFirst bool, d engine.Difficulty) *Session {
	s := &Session{
		mode:       mode,
		humanSide:  board.First,
		difficulty: d,
	}
	if mode == storage.ModeHumanVsComputer && !humanFirst {
		s.humanSide = board.Second
	}
	s.Restart()
	return s
}

// Restart clears the board, keeping the players and the tier.
func (s *Session) Restart() {
	s.pos.Reset()
	s.history = s.history[:0]
	s.started = time.Now()
	s.recorded = false
}

// Position returns the live position. Callers must not modify it.
func (s *Session) Position() *board.Position {
	return &s.pos
}

// Moves returns the columns played so far.
func (s *Session) Moves() []int {
	return slices.Clone(s.history)
}

// MoveString returns the moves as 1-based column digits.
func (s *Session) MoveString() string {
	return strings.Join(lo.Map(s.history, func(col int, _ int) string {
		return strconv.Itoa(col + 1)
	}), "")
}

func (s *Session) Mode() storage.GameMode {
	return s.mode
}

func (s *Session) Difficulty() engine.Difficulty {
	return s.difficulty
}

// SetDifficulty changes the tier for the engine's remaining moves.
func (s *Session) SetDifficulty(d engine.Difficulty) {
	s.difficulty = d
}

// HumanSide returns the side the human plays against the engine.
func (s *Session) HumanSide() board.Side {
	return s.humanSide
}

// ComputerToMove reports whether the engine should move now.
func (s *Session) ComputerToMove() bool {
	return s.mode == storage.ModeHumanVsComputer && !s.Over() && s.pos.SideToMove() != s.humanSide
}

// Play drops a stone for the side to move.
func (s *Session) Play(col int) error {
	if err := s.pos.Play(col); err != nil {
		return err
	}
	s.history = append(s.history, col)
	return nil
}

// Undo takes back the last move, and against the engine also the engine's
// reply, so that the human is to move again. It does nothing once the game
// is over.
func (s *Session) Undo() bool {
	if s.Over() || len(s.history) == 0 {
		return false
	}
	s.pop()
	if s.mode == storage.ModeHumanVsComputer && s.pos.SideToMove() != s.humanSide && len(s.history) > 0 {
		s.pop()
	}
	return true
}

func (s *Session) pop() {
	col := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.pos.Undo(col)
}

// LastMove returns the cell filled by the last move.
func (s *Session) LastMove() (board.Cell, bool) {
	if len(s.history) == 0 {
		return board.Cell{}, false
	}
	col := s.history[len(s.history)-1]
	return board.Cell{Col: col, Row: s.pos.Height(col) - 1}, true
}

// Outcome returns the current state of the game.
func (s *Session) Outcome() Outcome {
	winner := s.pos.Winner()
	switch {
	case winner == board.NoSide && s.pos.IsDraw():
		return Draw
	case winner == board.NoSide:
		return Ongoing
	case s.mode == storage.ModeHumanVsHuman && winner == board.First:
		return FirstWon
	case s.mode == storage.ModeHumanVsHuman:
		return SecondWon
	case winner == s.humanSide:
		return HumanWon
	}
	return ComputerWon
}

// Over reports whether the game has ended.
func (s *Session) Over() bool {
	return s.Outcome() != Ongoing
}

// ResultText returns a short message for a finished game, or "".
func (s *Session) ResultText() string {
	switch s.Outcome() {
	case HumanWon:
		return "You won!"
	case ComputerWon:
		return "AI won!"
	case FirstWon:
		return SideName(board.First) + " wins!"
	case SecondWon:
		return SideName(board.Second) + " wins!"
	case Draw:
		return "Draw!"
	}
	return ""
}

// SideName returns the display name of a side's discs.
func SideName(side board.Side) string {
	switch side {
	case board.First:
		return "Red"
	case board.Second:
		return "Yellow"
	}
	return ""
}

// Result summarizes a finished game for the statistics store.
func (s *Session) Result() storage.GameResult {
	outcome := s.Outcome()
	return storage.GameResult{
		Won:        outcome == HumanWon || outcome == FirstWon,
		Draw:       outcome == Draw,
		Mode:       s.mode,
		Difficulty: s.difficulty.String(),
		HumanFirst: s.humanSide == board.First,
		Moves:      s.MoveString(),
		Duration:   time.Since(s.started),
	}
}

// Record stores the result of a finished game once. It returns false when
// the game is still running or was already recorded.
func (s *Session) Record(r Recorder) (bool, error) {
	if !s.Over() || s.recorded {
		return false, nil
	}
	s.recorded = true
	if err := r.RecordGame(s.Result()); err != nil {
		return true, err
	}
	return true, nil
}
