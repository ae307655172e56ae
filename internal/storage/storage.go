package storage

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	prefixGame     = "game/"
)

// GameMode represents the game mode
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsComputer
)

func (m GameMode) key() string {
	if m == ModeHumanVsComputer {
		return "hvc"
	}
	return "hvh"
}

// UserPreferences stores user settings. Difficulty holds a tier name.
type UserPreferences struct {
	Username     string    `json:"username"`
	Difficulty   string    `json:"difficulty"`
	GameMode     GameMode  `json:"game_mode"`
	HumanFirst   bool      `json:"human_first"`
	SoundEnabled bool      `json:"sound_enabled"`
	LastPlayed   time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:     "Player",
		Difficulty:   "medium",
		GameMode:     ModeHumanVsComputer,
		HumanFirst:   true,
		SoundEnabled: true,
		LastPlayed:   time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByMode     map[string]int `json:"wins_by_mode"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	LossesByDiff   map[string]int `json:"losses_by_difficulty"`
	DrawsByDiff    map[string]int `json:"draws_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByMode:   make(map[string]int),
		WinsByDiff:   make(map[string]int),
		LossesByDiff: make(map[string]int),
		DrawsByDiff:  make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Won        bool
	Draw       bool
	Mode       GameMode
	Difficulty string
	HumanFirst bool
	Moves      string // 1-based column digits
	Duration   time.Duration
}

// GameRecord is a finished game as stored on disk.
type GameRecord struct {
	Moves      string    `json:"moves"`
	Outcome    string    `json:"outcome"` // "win", "loss" or "draw" for the human
	Mode       GameMode  `json:"mode"`
	Difficulty string    `json:"difficulty"`
	HumanFirst bool      `json:"human_first"`
	Played     time.Time `json:"played"`
	Times      int       `json:"times"` // How often this exact game was played
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the default data directory
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens (or creates) the database in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}
	log.Debug().Str("dir", dir).Msg("storage opened")

	return &Storage{db: db}, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	err := s.getJSON(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.putJSON(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.getJSON(keyStats, stats)
	stats.ensureMaps()
	return stats, err
}

// ensureMaps replaces maps decoded from JSON null.
func (st *GameStats) ensureMaps() {
	for _, m := range []*map[string]int{&st.WinsByMode, &st.WinsByDiff, &st.LossesByDiff, &st.DrawsByDiff} {
		if *m == nil {
			*m = make(map[string]int)
		}
	}
}

// RecordGame records a completed game, updates statistics and stores the
// move list. Replaying an identical game bumps its counter.
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.apply(result)
	if err := s.SaveStats(stats); err != nil {
		return err
	}

	if result.Moves == "" {
		return nil
	}
	return s.saveRecord(result)
}

// apply adds one finished game. Games between two humans only count toward
// the totals and the per-mode wins; the record, streaks and tiers are kept
// against the computer.
func (st *GameStats) apply(result GameResult) {
	st.GamesPlayed++
	st.TotalPlayTime += result.Duration

	if result.Mode != ModeHumanVsComputer {
		if result.Won && !result.Draw {
			st.WinsByMode[result.Mode.key()]++
		}
		return
	}

	switch {
	case result.Draw:
		st.Draws++
		st.CurrentStreak = 0
		st.DrawsByDiff[result.Difficulty]++
	case result.Won:
		st.Wins++
		st.CurrentStreak++
		if st.CurrentStreak > st.LongestWinStrk {
			st.LongestWinStrk = st.CurrentStreak
		}
		st.WinsByMode[result.Mode.key()]++
		st.WinsByDiff[result.Difficulty]++
	default:
		st.Losses++
		st.CurrentStreak = 0
		st.LossesByDiff[result.Difficulty]++
	}
}

// gameKey derives the record key from the move list.
func gameKey(moves string) []byte {
	return fmt.Appendf(nil, "%s%016x", prefixGame, xxhash.Sum64String(moves))
}

func outcome(result GameResult) string {
	switch {
	case result.Draw:
		return "draw"
	case result.Won:
		return "win"
	}
	return "loss"
}

func (s *Storage) saveRecord(result GameResult) error {
	key := gameKey(result.Moves)
	return s.db.Update(func(txn *badger.Txn) error {
		rec := GameRecord{}
		item, err := txn.Get(key)
		switch {
		case err == badger.ErrKeyNotFound:
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
		}

		rec.Moves = result.Moves
		rec.Outcome = outcome(result)
		rec.Mode = result.Mode
		rec.Difficulty = result.Difficulty
		rec.HumanFirst = result.HumanFirst
		rec.Played = time.Now()
		rec.Times++

		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// LoadGame returns the record for a move list, or nil if it was never played.
func (s *Storage) LoadGame(moves string) (*GameRecord, error) {
	var rec *GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(moves))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		rec = &GameRecord{}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	return rec, err
}

// ListGames returns up to limit stored games (0 = all), most recent first.
func (s *Storage) ListGames(limit int) ([]GameRecord, error) {
	var games []GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(games, func(a, b GameRecord) int {
		return b.Played.Compare(a.Played)
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes key into v and leaves v untouched if the key is missing.
func (s *Storage) getJSON(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// GetWinRate returns the win rate against the computer as a percentage (0-100)
func (st *GameStats) GetWinRate() float64 {
	rated := st.Wins + st.Losses + st.Draws
	if rated == 0 {
		return 0
	}
	return float64(st.Wins) / float64(rated) * 100
}

// TierRecord returns wins, losses and draws at one difficulty.
func (st *GameStats) TierRecord(difficulty string) (wins, losses, draws int) {
	return st.WinsByDiff[difficulty], st.LossesByDiff[difficulty], st.DrawsByDiff[difficulty]
}
