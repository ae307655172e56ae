// Package engine implements the Connect-Four search engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/connect4play/internal/board"
)

// ErrNoLegalMoves is returned when asked to move on a full board.
var ErrNoLegalMoves = errors.New("no legal moves")

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Depth  int
	Scores []RootScore
	Nodes  uint64
	Time   time.Duration
	Fill   int // Permille of table slots used
}

// SearchLimits specifies how hard to search and how to turn scores into a move.
type SearchLimits struct {
	Depth    int           // Plies searched below each root move
	MoveTime time.Duration // Time for this move (0 = no limit)
	Policy   Policy
	Noise    float64 // Noise amplitude for PolicyNoise
}

// Difficulty represents the AI strength.
type Difficulty int

const (
	Beginner Difficulty = iota
	Easy
	Medium
	Hard
	Impossible
)

// Difficulties lists every tier from weakest to strongest.
var Difficulties = []Difficulty{Beginner, Easy, Medium, Hard, Impossible}

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Beginner:   {Depth: 2, Policy: PolicyProportional},
	Easy:       {Depth: 4, Policy: PolicyNoise, Noise: 3},
	Medium:     {Depth: 10, Policy: PolicyNoise, Noise: 1},
	Hard:       {Depth: 17, Policy: PolicyBest},
	Impossible: {Depth: board.Cells, MoveTime: 10 * time.Second, Policy: PolicyBest},
}

var difficultyNames = [...]string{"beginner", "easy", "medium", "hard", "impossible"}

func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// ParseDifficulty accepts a tier name or its index.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range difficultyNames {
		if s == name || s == fmt.Sprint(i) {
			return Difficulty(i), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Decision is the outcome of one SelectMove call.
type Decision struct {
	Column    int
	Score     int
	Scores    []RootScore // Root scores of the deepest completed iteration
	Depth     int         // Deepest completed iteration, 0 for an immediate win
	Nodes     uint64
	Time      time.Duration
	Immediate bool // Chosen by the immediate-win check without searching
}

// Options configures an Engine.
type Options struct {
	TTCapacity uint64        // Table slots (0 = sized from system memory)
	Threads    int           // Root-split workers (0 = 1)
	Rand       RandSource    // nil = frand
	MoveTime   time.Duration // Overrides the tier time limit when set
}

// Engine chooses moves. One decision runs at a time.
type Engine struct {
	mu        sync.Mutex
	tt        *TranspositionTable
	rng       RandSource
	moveTime  time.Duration
	searchers []*Searcher
	stopFlag  atomic.Bool
	nodes     atomic.Uint64

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with its own transposition table.
func NewEngine(opts Options) *Engine {
	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}
	if ncpu := runtime.NumCPU(); threads > ncpu {
		threads = ncpu
	}
	rng := opts.Rand
	if rng == nil {
		rng = NewRandSource(nil)
	}

	e := &Engine{
		tt:       NewTranspositionTable(opts.TTCapacity),
		rng:      rng,
		moveTime: opts.MoveTime,
	}
	e.searchers = make([]*Searcher, threads)
	for i := range e.searchers {
		e.searchers[i] = NewSearcher(e.tt, &e.stopFlag)
	}
	return e
}

// Threads returns the number of root-split workers.
func (e *Engine) Threads() int {
	return len(e.searchers)
}

// Table returns the engine's transposition table.
func (e *Engine) Table() *TranspositionTable {
	return e.tt
}

// Nodes returns the nodes searched so far by the current decision.
func (e *Engine) Nodes() uint64 {
	return e.nodes.Load()
}

// Stop interrupts the running search. The decision in progress returns the
// deepest completed iteration. A decision that has not started yet is not
// affected; cancel its context instead.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear resets the transposition table and node counter.
func (e *Engine) Clear() {
	e.tt.Reset()
	e.nodes.Store(0)
}

// Play returns the position after the engine's move.
func (e *Engine) Play(ctx context.Context, pos *board.Position, d Difficulty) (board.Position, error) {
	next := *pos
	dec, err := e.SelectMove(ctx, pos, d)
	if err != nil {
		return next, err
	}
	next.Apply(dec.Column)
	return next, nil
}

// SelectMove chooses a move for the side to move at the given difficulty.
func (e *Engine) SelectMove(ctx context.Context, pos *board.Position, d Difficulty) (Decision, error) {
	limits, ok := DifficultySettings[d]
	if !ok {
		return Decision{}, fmt.Errorf("unknown difficulty %d", int(d))
	}
	if e.moveTime > 0 {
		limits.MoveTime = e.moveTime
	}
	return e.SelectMoveWithLimits(ctx, pos, limits)
}

// SelectMoveWithLimits chooses a move with explicit limits.
func (e *Engine) SelectMoveWithLimits(ctx context.Context, pos *board.Position, limits SearchLimits) (Decision, error) {
	if pos.Winner() != board.NoSide {
		return Decision{}, board.ErrGameOver
	}
	if pos.IsDraw() {
		return Decision{}, ErrNoLegalMoves
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.Clear()

	tm := NewTimeManager()
	tm.Init(limits.MoveTime)

	if wins := board.WinningColumns(pos); len(wins) > 0 {
		dec := Decision{
			Column:    wins[0],
			Score:     WinScore(pos.Moves()),
			Time:      tm.Elapsed(),
			Immediate: true,
		}
		dec.Scores = []RootScore{{Column: dec.Column, Score: dec.Score}}
		log.Info().Int("column", dec.Column+1).Msg("immediate win")
		return dec, nil
	}

	searchCtx, cancel := tm.Context(ctx)
	defer cancel()

	scores, depth, err := e.iterativeDeepen(searchCtx, pos, limits.Depth, tm)
	if err != nil {
		return Decision{}, err
	}

	dec := Decision{
		Depth: depth,
		Nodes: e.nodes.Load(),
		Time:  tm.Elapsed(),
	}
	if depth == 0 {
		// Nothing completed; fall back to the first candidate.
		if ctx.Err() != nil {
			return Decision{}, fmt.Errorf("search interrupted: %w", ctx.Err())
		}
		col := board.CandidateColumns(pos)[0]
		dec.Column = col
		dec.Scores = []RootScore{{Column: col}}
	} else {
		choice := pick(scores, limits.Policy, limits.Noise, e.rng)
		dec.Column = choice.Column
		dec.Score = choice.Score
		dec.Scores = scores
	}

	log.Info().
		Int("column", dec.Column+1).
		Int("score", dec.Score).
		Int("depth", dec.Depth).
		Uint64("nodes", dec.Nodes).
		Dur("elapsed", dec.Time).
		Str("policy", limits.Policy.String()).
		Msg("move selected")
	return dec, nil
}

// IterativeDeepen scores every candidate root move at increasing depths up
// to maxDepth and returns the scores of the deepest completed iteration and
// that depth. Candidates are the non-losing moves, or all legal moves when
// every move loses at once. The transposition table is kept across
// iterations and cleared on return.
func (e *Engine) IterativeDeepen(ctx context.Context, pos *board.Position, maxDepth int) ([]RootScore, int, error) {
	if pos.IsTerminal() {
		return nil, 0, ErrNoLegalMoves
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.Clear()

	tm := NewTimeManager()
	tm.Init(0)
	return e.iterativeDeepen(ctx, pos, maxDepth, tm)
}

func (e *Engine) iterativeDeepen(ctx context.Context, pos *board.Position, maxDepth int, tm *TimeManager) ([]RootScore, int, error) {
	e.stopFlag.Store(false)
	stop := context.AfterFunc(ctx, e.Stop)
	defer stop()

	cols := board.CandidateColumns(pos)

	// Nothing is left to discover past the last empty cell.
	if remaining := board.Cells - pos.Moves() - 1; maxDepth > remaining {
		maxDepth = remaining
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	startDepth := maxDepth / 4
	if startDepth < 1 {
		startDepth = 1
	}

	var best []RootScore
	bestDepth := 0
	for depth := startDepth; depth <= maxDepth; depth++ {
		scores, err := e.searchRoot(pos, cols, depth)
		if err != nil {
			return nil, 0, err
		}
		if e.stopFlag.Load() {
			break
		}
		best, bestDepth = scores, depth

		elapsed := tm.Elapsed()
		log.Debug().
			Int("depth", depth).
			Str("scores", FormatScores(scores)).
			Uint64("nodes", e.nodes.Load()).
			Dur("elapsed", elapsed).
			Msg("iteration")
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:  depth,
				Scores: scores,
				Nodes:  e.nodes.Load(),
				Time:   elapsed,
				Fill:   e.tt.Fill(),
			})
		}

		// If we've used more than half the time, don't start another iteration
		if tm.PastOptimum() {
			break
		}
	}
	return best, bestDepth, nil
}

// searchRoot scores each column in cols, splitting them across the
// engine's searchers. The result keeps the order of cols.
func (e *Engine) searchRoot(pos *board.Position, cols []int, depth int) ([]RootScore, error) {
	scores := make([]RootScore, len(cols))
	pool := make(chan *Searcher, len(e.searchers))
	for _, s := range e.searchers {
		pool <- s
	}

	var g errgroup.Group
	g.SetLimit(len(e.searchers))
	for i, col := range cols {
		g.Go(func() error {
			s := <-pool
			defer func() { pool <- s }()

			s.InitSearch(pos)
			score := s.ScoreColumn(col, depth)
			e.nodes.Add(s.Nodes())
			scores[i] = RootScore{Column: col, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	p := *pos
	return uint64(board.Perft(&p, depth))
}

// ScoreToString describes a score from the point of view of the side to move
// in a position with moves stones played.
func ScoreToString(score, moves int) string {
	switch {
	case score > 0:
		return fmt.Sprintf("win in %d", pliesToResult(score, moves, 0))
	case score < 0:
		return fmt.Sprintf("loss in %d", pliesToResult(-score, moves, 1))
	}
	return "draw"
}

// pliesToResult inverts WinScore. parity is 0 when the side to move makes the
// final move and 1 when the opponent does.
func pliesToResult(score, moves, parity int) int {
	n := board.Cells + 1 - 2*score
	if (n-moves-parity)%2 != 0 {
		n--
	}
	return n - moves + 1
}
