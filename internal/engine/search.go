package engine

import (
	"sync/atomic"

	"github.com/hailam/connect4play/internal/board"
)

// Score bounds. A win found with n stones on the board scores
// (Cells+1-n)/2, so the fastest possible win scores MaxScore.
const (
	MaxScore = (board.Cells + 1) / 2
	MinScore = -board.Cells / 2
)

// WinScore is the score of a position in which the side to move completes
// four on its next stone, with moves stones already played.
func WinScore(moves int) int {
	return (board.Cells + 1 - moves) / 2
}

// MaxScoreAt bounds the score of a position with moves stones played in
// which the side to move has no immediate win: the earliest win is two plies
// away.
func MaxScoreAt(moves int) int {
	return (board.Cells - 1 - moves) / 2
}

// RootWindow returns the widest meaningful alpha-beta window for a position
// with moves stones played.
func RootWindow(moves int) (alpha, beta int) {
	return -(board.Cells - moves) / 2, (board.Cells + 1 - moves) / 2
}

// Searcher runs the negamax search over a private copy of a position. Several
// searchers may share a TranspositionTable and a stop flag.
type Searcher struct {
	pos      board.Position
	tt       *TranspositionTable
	stopFlag *atomic.Bool

	nodes   uint64
	aborted bool

	// horizon is the absolute ply at which the current search stops. Bounds
	// that depend on it are stored under a key tagged with it.
	horizon     int
	horizonHits uint64
}

// NewSearcher creates a searcher. stopFlag may be nil.
func NewSearcher(tt *TranspositionTable, stopFlag *atomic.Bool) *Searcher {
	if stopFlag == nil {
		stopFlag = new(atomic.Bool)
	}
	return &Searcher{
		tt:       tt,
		stopFlag: stopFlag,
	}
}

// InitSearch copies pos into the searcher and clears the per-search state.
func (s *Searcher) InitSearch(pos *board.Position) {
	s.pos = *pos
	s.nodes = 0
	s.aborted = false
}

// Position returns the searcher's private position.
func (s *Searcher) Position() *board.Position {
	return &s.pos
}

// Nodes returns the number of nodes visited since InitSearch.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Aborted reports whether the last search was cut short by the stop flag.
// Scores from an aborted search are meaningless.
func (s *Searcher) Aborted() bool {
	return s.aborted
}

// Negamax scores the searcher's position from the side to move's point of
// view, looking at most depth plies ahead. Scores outside (alpha, beta) are
// only bounds.
func (s *Searcher) Negamax(depth, alpha, beta int) int {
	s.horizon = s.pos.Moves() + depth
	return s.negamax(depth, alpha, beta)
}

// ScoreColumn plays col at the root and scores it for the side that played
// it, searching the reply position depth plies deep with a full window. col
// must be playable.
func (s *Searcher) ScoreColumn(col, depth int) int {
	moves := s.pos.Moves()
	if board.IsWinningMove(&s.pos, col) {
		return WinScore(moves)
	}
	s.pos.Apply(col)
	defer s.pos.Undo(col)

	alpha, beta := RootWindow(s.pos.Moves())
	return -s.Negamax(depth, alpha, beta)
}

func (s *Searcher) negamax(depth, alpha, beta int) int {
	s.nodes++
	if s.nodes&4095 == 0 && s.stopFlag.Load() {
		s.aborted = true
	}
	if s.aborted {
		return 0
	}

	p := &s.pos
	if p.IsDraw() {
		return 0
	}
	if depth == 0 {
		s.horizonHits++
		return 0
	}

	moves := p.Moves()
	if board.CanWinNext(p) {
		return WinScore(moves)
	}

	hits := s.horizonHits
	key := p.Fingerprint()
	upper := MaxScoreAt(moves)
	if v, ok := s.tt.Get(key); ok {
		upper = v
	} else if v, ok := s.tt.Get(s.horizonKey(key)); ok {
		upper = v
		s.horizonHits++
	}
	if beta > upper {
		beta = upper
		if alpha >= beta {
			return beta
		}
	}

	cols := board.NonLosingColumns(p)
	if len(cols) == 0 {
		cols = p.LegalColumns()
	}
	for _, col := range cols {
		score := s.child(col, depth, alpha, beta)
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	if s.aborted {
		return 0
	}
	if s.horizonHits == hits {
		s.tt.Set(key, alpha)
	} else {
		s.tt.Set(s.horizonKey(key), alpha)
	}
	return alpha
}

// child plays col, searches the reply and takes the move back on every path.
func (s *Searcher) child(col, depth, alpha, beta int) int {
	s.pos.Apply(col)
	defer s.pos.Undo(col)
	return -s.negamax(depth-1, -beta, -alpha)
}

// horizonKey tags a fingerprint with the search horizon. A bound whose
// subtree reached the depth limit is only valid for the same horizon.
func (s *Searcher) horizonKey(key uint64) uint64 {
	return key | uint64(s.horizon)<<board.KeyBits
}
