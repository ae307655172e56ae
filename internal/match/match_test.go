package match

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

const drawMoves = "121212212121343434434343565656656565777777"

func playAll(t *testing.T, s *Session, moves string) {
	t.Helper()
	for _, r := range moves {
		col, err := board.ParseColumn(string(r))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Play(col); err != nil {
			t.Fatalf("Play(%d) after %q: %v", col+1, s.MoveString(), err)
		}
	}
}

type fakeRecorder struct {
	results []storage.GameResult
	err     error
}

func (f *fakeRecorder) RecordGame(result storage.GameResult) error {
	f.results = append(f.results, result)
	return f.err
}

func TestTurns(t *testing.T) {
	is := is.New(t)

	s := New(storage.ModeHumanVsComputer, true, engine.Medium)
	is.True(!s.ComputerToMove())
	is.NoErr(s.Play(3))
	is.True(s.ComputerToMove())

	s = New(storage.ModeHumanVsComputer, false, engine.Medium)
	is.Equal(s.HumanSide(), board.Second)
	is.True(s.ComputerToMove())

	s = New(storage.ModeHumanVsHuman, false, engine.Medium)
	is.Equal(s.HumanSide(), board.First)
	is.True(!s.ComputerToMove())
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		name       string
		mode       storage.GameMode
		humanFirst bool
		moves      string
		want       Outcome
		text       string
		won        bool
	}{
		{"human wins", storage.ModeHumanVsComputer, true, "1212121", HumanWon, "You won!", true},
		{"engine wins", storage.ModeHumanVsComputer, false, "1212121", ComputerWon, "AI won!", false},
		{"red wins", storage.ModeHumanVsHuman, true, "1212121", FirstWon, "Red wins!", true},
		{"yellow wins", storage.ModeHumanVsHuman, true, "71212121", SecondWon, "Yellow wins!", false},
		{"draw", storage.ModeHumanVsComputer, true, drawMoves, Draw, "Draw!", false},
		{"running", storage.ModeHumanVsComputer, true, "4453", Ongoing, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			s := New(tc.mode, tc.humanFirst, engine.Hard)
			playAll(t, s, tc.moves)

			is.Equal(s.Outcome(), tc.want)
			is.Equal(s.ResultText(), tc.text)
			is.Equal(s.Over(), tc.want != Ongoing)

			res := s.Result()
			is.Equal(res.Won, tc.won)
			is.Equal(res.Draw, tc.want == Draw)
			is.Equal(res.Moves, tc.moves)
			is.Equal(res.Difficulty, "hard")
			is.Equal(res.Mode, tc.mode)
		})
	}
}

func TestPlayErrors(t *testing.T) {
	is := is.New(t)
	s := New(storage.ModeHumanVsHuman, true, engine.Easy)

	is.True(errors.Is(s.Play(7), board.ErrInvalidColumn))
	playAll(t, s, "444444")
	is.True(errors.Is(s.Play(3), board.ErrColumnFull))
	is.Equal(s.MoveString(), "444444")

	playAll(t, s, "1212121")
	is.True(errors.Is(s.Play(4), board.ErrGameOver))
}

func TestUndo(t *testing.T) {
	is := is.New(t)

	s := New(storage.ModeHumanVsComputer, true, engine.Medium)
	is.True(!s.Undo())
	playAll(t, s, "4453")
	is.True(s.Undo()) // Takes back the engine's reply and the human's move
	is.Equal(s.MoveString(), "44")
	is.Equal(s.Position().Moves(), 2)

	h := New(storage.ModeHumanVsHuman, true, engine.Medium)
	playAll(t, h, "4453")
	is.True(h.Undo())
	is.Equal(h.MoveString(), "445")

	// The engine's opening move stays when the human plays second.
	second := New(storage.ModeHumanVsComputer, false, engine.Medium)
	playAll(t, second, "44")
	is.True(second.Undo())
	is.Equal(second.MoveString(), "4")

	over := New(storage.ModeHumanVsHuman, true, engine.Medium)
	playAll(t, over, "1212121")
	is.True(!over.Undo())
}

func TestLastMove(t *testing.T) {
	is := is.New(t)
	s := New(storage.ModeHumanVsHuman, true, engine.Medium)
	_, ok := s.LastMove()
	is.True(!ok)

	playAll(t, s, "445")
	cell, ok := s.LastMove()
	is.True(ok)
	is.Equal(cell, board.Cell{Col: 4, Row: 0})
}

func TestRecordOnce(t *testing.T) {
	is := is.New(t)
	rec := &fakeRecorder{}
	s := New(storage.ModeHumanVsComputer, true, engine.Beginner)

	playAll(t, s, "121212")
	done, err := s.Record(rec)
	is.NoErr(err)
	is.True(!done)

	playAll(t, s, "1")
	done, err = s.Record(rec)
	is.NoErr(err)
	is.True(done)
	done, _ = s.Record(rec)
	is.True(!done)
	is.Equal(len(rec.results), 1)
	is.True(rec.results[0].Won)
	is.Equal(rec.results[0].Difficulty, "beginner")

	s.Restart()
	is.Equal(s.MoveString(), "")
	playAll(t, s, drawMoves)
	_, err = s.Record(&fakeRecorder{err: errors.New("disk full")})
	is.True(err != nil)
}

func TestRecordToStorage(t *testing.T) {
	is := is.New(t)
	store, err := storage.OpenInMemory()
	is.NoErr(err)
	defer store.Close()

	s := New(storage.ModeHumanVsComputer, false, engine.Impossible)
	playAll(t, s, "1212121")
	_, err = s.Record(store)
	is.NoErr(err)

	stats, err := store.LoadStats()
	is.NoErr(err)
	wins, losses, draws := stats.TierRecord("impossible")
	is.Equal(wins, 0)
	is.Equal(losses, 1)
	is.Equal(draws, 0)
}
