// Package cli implements a line-oriented text protocol for driving the engine
// from a terminal or a script.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/connect4play/internal/board"
	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

// CLI reads commands from in and writes replies to out.
type CLI struct {
	engine *engine.Engine
	store  *storage.Storage // nil disables statistics

	position   *board.Position
	history    []int      // Columns played since the last new/position
	fromBoard  bool       // Position was set from a grid; history is incomplete
	engineSide board.Side // Side the engine has played for, NoSide if none
	difficulty engine.Difficulty
	started    time.Time

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // Guards out

	// Search state
	searchDone   chan struct{}
	cancelSearch context.CancelFunc
}

// New creates a protocol handler. store may be nil.
func New(eng *engine.Engine, store *storage.Storage, in io.Reader, out io.Writer) *CLI {
	c := &CLI{
		engine:     eng,
		store:      store,
		in:         in,
		out:        out,
		difficulty: engine.Medium,
	}
	c.reset()
	eng.OnInfo = c.sendInfo
	return c
}

// SetDifficulty selects the tier used by play and go.
func (c *CLI) SetDifficulty(d engine.Difficulty) {
	c.difficulty = d
}

// Run processes commands until quit or end of input.
func (c *CLI) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		if cmd != "stop" {
			c.wait()
		}

		switch cmd {
		case "new":
			c.handleNew()
		case "position":
			c.handlePosition(args)
		case "play":
			c.handlePlay(ctx, args)
		case "undo":
			c.handleUndo()
		case "go":
			c.handleGo(ctx, args)
		case "stop":
			c.handleStop()
		case "isready":
			c.println("readyok")
		case "difficulty":
			c.handleDifficulty(args)
		case "d":
			c.handleDisplay()
		case "perft":
			c.handlePerft(args)
		case "stats":
			c.handleStats()
		case "help":
			c.handleHelp()
		case "quit":
			c.handleStop()
			return nil
		default:
			c.printf("error unknown command %q\n", cmd)
		}
	}
	c.wait()
	return scanner.Err()
}

func (c *CLI) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) println(s string) {
	c.printf("%s\n", s)
}

func (c *CLI) reset() {
	c.position = board.NewPosition()
	c.history = c.history[:0]
	c.fromBoard = false
	c.engineSide = board.NoSide
	c.started = time.Now()
}

// handleNew starts a new game.
func (c *CLI) handleNew() {
	c.engine.Clear()
	c.reset()
	c.println("ok")
}

// handlePosition sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves 4453
//   - position moves 4 4 5 3
//   - position board <42 cells of . x o, top row first>
func (c *CLI) handlePosition(args []string) {
	if len(args) == 0 {
		c.println("error position needs arguments")
		return
	}

	switch args[0] {
	case "startpos", "moves":
		if args[0] == "startpos" {
			args = args[1:]
			if len(args) > 0 && args[0] == "moves" {
				args = args[1:]
			}
		} else {
			args = args[1:]
		}
		pos, err := board.ParseMoves(strings.Join(args, ""))
		if err != nil {
			c.printf("error %v\n", err)
			return
		}
		c.reset()
		c.position = pos
		for _, r := range strings.Join(args, "") {
			c.history = append(c.history, int(r-'1'))
		}
	case "board":
		pos, err := board.ParseBoard(strings.Join(args[1:], ""))
		if err != nil {
			c.printf("error %v\n", err)
			return
		}
		c.reset()
		c.position = pos
		c.fromBoard = true
	default:
		c.printf("error unknown position format %q\n", args[0])
		return
	}
	c.println("ok")
}

// handlePlay plays a column for the side to move, or lets the engine move
// when no column is given.
func (c *CLI) handlePlay(ctx context.Context, args []string) {
	if len(args) == 0 {
		c.enginePlay(ctx)
		return
	}
	col, err := board.ParseColumn(args[0])
	if err != nil {
		c.printf("error %v\n", err)
		return
	}
	if err := c.position.Play(col); err != nil {
		c.printf("error %v\n", err)
		return
	}
	c.history = append(c.history, col)
	c.printf("played %d\n", col+1)
	c.checkResult()
}

func (c *CLI) enginePlay(ctx context.Context) {
	side := c.position.SideToMove()
	dec, err := c.engine.SelectMove(ctx, c.position, c.difficulty)
	if err != nil {
		c.printf("error %v\n", err)
		return
	}
	c.position.Apply(dec.Column)
	c.history = append(c.history, dec.Column)
	c.engineSide = side
	c.printf("engine plays %d score %d depth %d nodes %d\n", dec.Column+1, dec.Score, dec.Depth, dec.Nodes)
	c.checkResult()
}

// handleUndo takes back the last move. A finished game has already been
// recorded, so it cannot be taken back.
func (c *CLI) handleUndo() {
	if c.position.IsTerminal() {
		c.printf("error %v\n", board.ErrGameOver)
		return
	}
	if len(c.history) == 0 {
		c.println("error nothing to undo")
		return
	}
	col := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	c.position.Undo(col)
	c.printf("undone %d\n", col+1)
}

// checkResult reports and records a finished game.
func (c *CLI) checkResult() {
	if !c.position.IsTerminal() {
		return
	}
	winner := c.position.Winner()
	if winner == board.NoSide {
		c.println("result draw")
	} else {
		c.printf("result %s wins\n", winner)
	}
	if c.store == nil || c.fromBoard {
		return
	}

	result := storage.GameResult{
		Draw:       winner == board.NoSide,
		Mode:       storage.ModeHumanVsHuman,
		Difficulty: c.difficulty.String(),
		HumanFirst: true,
		Moves:      c.moveString(),
		Duration:   time.Since(c.started),
	}
	if c.engineSide != board.NoSide {
		result.Mode = storage.ModeHumanVsComputer
		result.HumanFirst = c.engineSide == board.Second
		result.Won = !result.Draw && winner != c.engineSide
	} else {
		result.Won = winner == board.First
	}
	if err := c.store.RecordGame(result); err != nil {
		log.Error().Err(err).Msg("record game")
	}
}

func (c *CLI) moveString() string {
	return strings.Join(lo.Map(c.history, func(col int, _ int) string {
		return strconv.Itoa(col + 1)
	}), "")
}

// handleGo starts a search with the given parameters.
// Formats:
//   - go
//   - go difficulty hard depth 8 movetime 500
func (c *CLI) handleGo(ctx context.Context, args []string) {
	limits, err := c.parseGoOptions(args)
	if err != nil {
		c.printf("error %v\n", err)
		return
	}

	pos := c.position.Copy()
	searchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.searchDone = done
	c.cancelSearch = cancel

	go func() {
		defer close(done)
		defer cancel()

		dec, err := c.engine.SelectMoveWithLimits(searchCtx, pos, limits)
		if err != nil {
			c.printf("error %v\n", err)
			return
		}
		c.printf("bestmove %d score %d (%s)\n", dec.Column+1, dec.Score, engine.ScoreToString(dec.Score, pos.Moves()))
	}()
}

// parseGoOptions starts from the current tier and applies overrides.
func (c *CLI) parseGoOptions(args []string) (engine.SearchLimits, error) {
	limits := engine.DifficultySettings[c.difficulty]
	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return limits, fmt.Errorf("missing value for %s", args[i])
		}
		value := args[i+1]
		switch args[i] {
		case "depth":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return limits, fmt.Errorf("bad depth %q", value)
			}
			limits.Depth = n
		case "movetime":
			ms, err := strconv.Atoi(value)
			if err != nil || ms < 0 {
				return limits, fmt.Errorf("bad movetime %q", value)
			}
			limits.MoveTime = time.Duration(ms) * time.Millisecond
		case "difficulty":
			d, err := engine.ParseDifficulty(value)
			if err != nil {
				return limits, err
			}
			limits = engine.DifficultySettings[d]
		default:
			return limits, fmt.Errorf("unknown go option %q", args[i])
		}
		i++
	}
	return limits, nil
}

// sendInfo sends search information for a completed iteration.
func (c *CLI) sendInfo(info engine.SearchInfo) {
	c.printf("info depth %d scores %s nodes %d time %d fill %d\n",
		info.Depth, engine.FormatScores(info.Scores), info.Nodes, info.Time.Milliseconds(), info.Fill)
}

// handleStop stops the current search. Cancelling its context also covers a
// search goroutine that has not reached the engine yet.
func (c *CLI) handleStop() {
	if c.cancelSearch != nil {
		c.cancelSearch()
	}
	c.wait()
}

// wait blocks until a running search has printed its result.
func (c *CLI) wait() {
	if c.searchDone != nil {
		<-c.searchDone
		c.searchDone = nil
		c.cancelSearch = nil
	}
}

// handleDifficulty shows or sets the tier.
func (c *CLI) handleDifficulty(args []string) {
	if len(args) > 0 {
		d, err := engine.ParseDifficulty(args[0])
		if err != nil {
			c.printf("error %v\n", err)
			return
		}
		c.difficulty = d
	}
	limits := engine.DifficultySettings[c.difficulty]
	c.printf("difficulty %s depth %d policy %s\n", c.difficulty, limits.Depth, limits.Policy)
}

// handleDisplay prints the board and the game state.
func (c *CLI) handleDisplay() {
	c.printf("%s", c.position.String())
	c.printf("history %s\n", c.moveString())
	if c.position.IsTerminal() {
		c.println("game over")
	}
}

// handlePerft runs a perft test.
func (c *CLI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			c.printf("error bad depth %q\n", args[0])
			return
		}
		depth = n
	}

	start := time.Now()
	nodes := c.engine.Perft(c.position, depth)
	elapsed := time.Since(start)

	c.printf("nodes %d time %d", nodes, elapsed.Milliseconds())
	if elapsed > 0 {
		c.printf(" nps %.0f", float64(nodes)/elapsed.Seconds())
	}
	c.println("")
}

// handleStats prints stored game statistics.
func (c *CLI) handleStats() {
	if c.store == nil {
		c.println("error no storage")
		return
	}
	stats, err := c.store.LoadStats()
	if err != nil {
		c.printf("error %v\n", err)
		return
	}
	c.printf("games %d wins %d losses %d draws %d winrate %.1f\n",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.GetWinRate())
	tiers := lo.Filter(engine.Difficulties, func(d engine.Difficulty, _ int) bool {
		w, l, dr := stats.TierRecord(d.String())
		return w+l+dr > 0
	})
	for _, d := range tiers {
		w, l, dr := stats.TierRecord(d.String())
		c.printf("tier %s wins %d losses %d draws %d\n", d, w, l, dr)
	}

	games, err := c.store.ListGames(5)
	if err != nil {
		c.printf("error %v\n", err)
		return
	}
	for _, g := range games {
		c.printf("game %s %s %s\n", g.Played.Format(time.DateTime), g.Outcome, g.Moves)
	}
}

func (c *CLI) handleHelp() {
	c.println(`commands:
  new                          start a new game
  position startpos [moves M]  set up a position from column digits
  position board <grid>        set up a position from 42 cells of . x o
  play [column]                play a column, or let the engine move
  undo                         take back the last move
  go [depth N] [movetime MS] [difficulty D]
  stop                         stop the running search
  difficulty [name]            show or set the tier
  d                            display the board
  perft [depth]                count move sequences
  stats                        show stored statistics
  quit`)
}
