package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/hailam/connect4play/internal/engine"
	"github.com/hailam/connect4play/internal/storage"
)

func run(t *testing.T, store *storage.Storage, script string) string {
	t.Helper()
	eng := engine.NewEngine(engine.Options{
		TTCapacity: 1 << 16,
		Threads:    2,
		Rand:       engine.NewRandSource([]byte("cli")),
	})
	var out bytes.Buffer
	c := New(eng, store, strings.NewReader(script), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestGoReportsBestMove(t *testing.T) {
	is := is.New(t)
	out := run(t, nil, "position startpos moves 12121\ngo depth 4\nisready\nquit\n")

	is.True(strings.Contains(out, "info depth 4"))
	best := strings.Index(out, "bestmove 1 ")
	ready := strings.Index(out, "readyok")
	is.True(best >= 0)
	is.True(ready > best) // isready waits for the search
}

func TestGoOptions(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{"missing value", "go depth", "error missing value for depth"},
		{"bad depth", "go depth x", "error bad depth"},
		{"unknown option", "go nodes 5", "error unknown go option"},
		{"bad difficulty", "go difficulty nope", "error unknown difficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, nil, tt.args+"\n")
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestGameRecordedOnWin(t *testing.T) {
	is := is.New(t)
	store, err := storage.OpenInMemory()
	is.NoErr(err)
	defer store.Close()

	out := run(t, store, "new\nplay 1\nplay 2\nplay 1\nplay 2\nplay 1\nplay 2\nplay 1\nplay 3\nstats\n")

	is.True(strings.Contains(out, "played 1"))
	is.True(strings.Contains(out, "result x wins"))
	is.True(strings.Contains(out, "error game is already over"))
	is.True(strings.Contains(out, "games 1 wins 0 losses 0 draws 0")) // two humans played
	is.True(!strings.Contains(out, "tier medium"))
	is.True(strings.Contains(out, "win 1212121"))

	stats, err := store.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 1)
}

func TestPlayErrors(t *testing.T) {
	is := is.New(t)
	out := run(t, nil, "play 9\nposition startpos moves 444444\nplay 4\nundo\nundo\n")

	is.True(strings.Contains(out, "error invalid column"))
	is.True(strings.Contains(out, "error column is full: 4"))
	is.True(strings.Contains(out, "undone 4"))
}

func TestEnginePlay(t *testing.T) {
	is := is.New(t)
	out := run(t, nil, "position startpos moves 12121\nplay\nd\n")

	// Column 1 is the only move that does not lose at once.
	is.True(strings.Contains(out, "engine plays 1 "))
	is.True(strings.Contains(out, "history 121211"))
}

func TestPositionBoard(t *testing.T) {
	is := is.New(t)
	grid := strings.Repeat(".......", 5) + "x......"
	out := run(t, nil, "position board "+grid+"\nperft 1\nposition board xx\n")

	is.True(strings.Contains(out, "ok"))
	is.True(strings.Contains(out, "nodes 7 "))
	is.True(strings.Contains(out, "error malformed board string"))
}

func TestDifficultyCommand(t *testing.T) {
	is := is.New(t)
	out := run(t, nil, "difficulty\ndifficulty hard\ndifficulty 0\ndifficulty nope\n")

	is.True(strings.Contains(out, "difficulty medium depth 10 policy noise"))
	is.True(strings.Contains(out, "difficulty hard depth 17 policy best"))
	is.True(strings.Contains(out, "difficulty beginner depth 2"))
	is.True(strings.Contains(out, "error unknown difficulty"))
}

func TestStatsWithoutStorage(t *testing.T) {
	is := is.New(t)
	out := run(t, nil, "stats\nbogus\n")
	is.True(strings.Contains(out, "error no storage"))
	is.True(strings.Contains(out, `error unknown command "bogus"`))
}

func TestUndoAfterGameEnds(t *testing.T) {
	is := is.New(t)
	store, err := storage.OpenInMemory()
	is.NoErr(err)
	defer store.Close()

	out := run(t, store, "play 1\nplay 2\nplay 1\nplay 2\nplay 1\nplay 2\nplay 1\nundo\nplay 1\nd\n")

	is.True(strings.Contains(out, "error game is already over"))
	is.True(!strings.Contains(out, "undone"))
	is.True(strings.Contains(out, "history 1212121"))

	stats, err := store.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 1) // recorded once
}

// runWithin runs script and fails if it does not finish in time.
func runWithin(t *testing.T, script string, limit time.Duration) string {
	t.Helper()
	eng := engine.NewEngine(engine.Options{
		TTCapacity: 1 << 16,
		Rand:       engine.NewRandSource([]byte("cli")),
	})
	var out bytes.Buffer
	c := New(eng, nil, strings.NewReader(script), &out)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(limit):
		t.Fatalf("%q still running after %s", script, limit)
	}
	return out.String()
}

func TestStopRightAfterGo(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"stop", "go depth 30\nstop\n"},
		{"quit", "go depth 30\nquit\n"},
		{"unlimited tier", "go difficulty impossible movetime 0\nstop\nisready\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runWithin(t, tt.script, 10*time.Second)
			if !strings.Contains(out, "bestmove") && !strings.Contains(out, "error search interrupted") {
				t.Errorf("stopped search printed no result: %q", out)
			}
		})
	}
}
