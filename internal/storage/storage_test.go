package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != "medium" {
			t.Errorf("Expected medium difficulty, got %q", prefs.Difficulty)
		}
		if !prefs.HumanFirst {
			t.Errorf("Expected human to move first by default")
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	is := is.New(t)
	s := openTestStorage(t)

	prefs, err := s.LoadPreferences()
	is.NoErr(err)
	is.Equal(prefs.Difficulty, "medium") // defaults when nothing stored

	prefs.Username = "ada"
	prefs.Difficulty = "hard"
	prefs.HumanFirst = false
	is.NoErr(s.SavePreferences(prefs))

	loaded, err := s.LoadPreferences()
	is.NoErr(err)
	is.Equal(loaded.Username, "ada")
	is.Equal(loaded.Difficulty, "hard")
	is.True(!loaded.HumanFirst)
}

func TestFirstLaunch(t *testing.T) {
	is := is.New(t)
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	is.NoErr(err)
	is.True(first)

	is.NoErr(s.MarkFirstLaunchComplete())
	first, err = s.IsFirstLaunch()
	is.NoErr(err)
	is.True(!first)
}

func TestRecordGame(t *testing.T) {
	is := is.New(t)
	s := openTestStorage(t)

	results := []GameResult{
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: "easy", Moves: "4455667", Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: "easy", Moves: "4455667", Duration: time.Minute},
		{Mode: ModeHumanVsComputer, Difficulty: "hard", Moves: "1234567"},
		{Draw: true, Mode: ModeHumanVsHuman, Difficulty: "hard"},
	}
	for _, r := range results {
		is.NoErr(s.RecordGame(r))
	}

	stats, err := s.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 4)
	is.Equal(stats.Wins, 2)
	is.Equal(stats.Losses, 1)
	is.Equal(stats.Draws, 0) // the draw was between two humans
	is.Equal(stats.LongestWinStrk, 2)
	is.Equal(stats.CurrentStreak, 0)
	is.Equal(stats.WinsByMode["hvc"], 2)
	is.Equal(stats.TotalPlayTime, 2*time.Minute)

	w, l, d := stats.TierRecord("hard")
	is.Equal([]int{w, l, d}, []int{0, 1, 0})
	w, l, d = stats.TierRecord("easy")
	is.Equal([]int{w, l, d}, []int{2, 0, 0})

	rec, err := s.LoadGame("4455667")
	is.NoErr(err)
	is.True(rec != nil)
	is.Equal(rec.Outcome, "win")
	is.Equal(rec.Times, 2)

	rec, err = s.LoadGame("7777")
	is.NoErr(err)
	is.True(rec == nil)

	games, err := s.ListGames(0)
	is.NoErr(err)
	is.Equal(len(games), 2) // the draw had no moves
	games, err = s.ListGames(1)
	is.NoErr(err)
	is.Equal(len(games), 1)
	is.Equal(games[0].Moves, "1234567") // most recent first
}

func TestHumanGamesKeptOutOfTiers(t *testing.T) {
	is := is.New(t)
	s := openTestStorage(t)

	is.NoErr(s.RecordGame(GameResult{Won: true, Mode: ModeHumanVsComputer, Difficulty: "medium", Moves: "1212121"}))
	is.NoErr(s.RecordGame(GameResult{Won: true, Mode: ModeHumanVsHuman, Difficulty: "medium", Moves: "2121212"}))
	is.NoErr(s.RecordGame(GameResult{Mode: ModeHumanVsHuman, Difficulty: "medium", Moves: "71212121"}))

	stats, err := s.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 3)
	is.Equal(stats.Wins, 1)
	is.Equal(stats.Losses, 0)
	is.Equal(stats.WinsByMode["hvh"], 1)
	is.Equal(stats.GetWinRate(), 100.0)

	w, l, d := stats.TierRecord("medium")
	is.Equal([]int{w, l, d}, []int{1, 0, 0})

	games, err := s.ListGames(0)
	is.NoErr(err)
	is.Equal(len(games), 3) // every finished game is still kept
}

func TestOpenOnDisk(t *testing.T) {
	is := is.New(t)
	dir, err := DatabaseDir(t.TempDir())
	is.NoErr(err)

	s, err := Open(dir)
	is.NoErr(err)
	is.NoErr(s.SaveStats(&GameStats{GamesPlayed: 3, Wins: 1}))
	is.NoErr(s.Close())

	s, err = Open(dir)
	is.NoErr(err)
	defer s.Close()
	stats, err := s.LoadStats()
	is.NoErr(err)
	is.Equal(stats.GamesPlayed, 3)
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	// Test that GetDataDir returns a valid path
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if filepath.Base(dataDir) != appName {
		t.Errorf("data dir %s does not end in %s", dataDir, appName)
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
