package board

import (
	"errors"
	"testing"
)

// walk visits every position reachable from p within depth plies, stopping at
// terminal positions.
func walk(p *Position, depth int, visit func(p *Position)) {
	visit(p)
	if depth == 0 || p.LastMoverWon() || p.IsDraw() {
		return
	}
	for _, col := range p.LegalColumns() {
		p.Apply(col)
		walk(p, depth-1, visit)
		p.Undo(col)
	}
}

var midgames = []string{
	"",
	"4444",
	"44455554",
	"3344556",
	"1212123",
	"444444333333",
	"4152364",
	"7766553",
	"112233556",
}

func mustParse(t *testing.T, moves string) *Position {
	t.Helper()
	pos, err := ParseMoves(moves)
	if err != nil {
		t.Fatalf("ParseMoves(%q): %v", moves, err)
	}
	return pos
}

func TestApplyUndoRoundTrip(t *testing.T) {
	for _, moves := range midgames {
		start := mustParse(t, moves)
		walk(start, 3, func(p *Position) {
			for col := 0; col < Width; col++ {
				before := *p
				if !p.Apply(col) {
					if *p != before {
						t.Fatalf("failed Apply(%d) mutated position", col)
					}
					continue
				}
				p.Undo(col)
				if *p != before {
					t.Fatalf("Apply/Undo(%d) did not restore position after %q", col, moves)
				}
			}
		})
	}
}

func TestMoveCounterMatchesStones(t *testing.T) {
	for _, moves := range midgames {
		walk(mustParse(t, moves), 3, func(p *Position) {
			if got := p.Occupied().PopCount(); got != p.Moves() {
				t.Fatalf("popcount %d != moves %d", got, p.Moves())
			}
			if p.Stones(First)&p.Stones(Second) != 0 {
				t.Fatal("stone sets overlap")
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestApplyFullColumn(t *testing.T) {
	pos := mustParse(t, "444444")
	if pos.Apply(3) {
		t.Error("Apply on full column succeeded")
	}
	if pos.Apply(-1) || pos.Apply(Width) {
		t.Error("Apply out of range succeeded")
	}
	if pos.Moves() != 6 {
		t.Errorf("moves = %d, want 6", pos.Moves())
	}
	if pos.Occupied()&TopCell(3) == 0 || TopCell(3) != CellBB(3, Height-1) {
		t.Error("top cell of the full column is not occupied")
	}
	if !(pos.Occupied() &^ ColumnMask(3)).Empty() {
		t.Error("stones outside column 4")
	}
}

func TestWinDirections(t *testing.T) {
	tests := []struct {
		name  string
		cells [][2]int
	}{
		{"vertical", [][2]int{{0, 0}, {0, 1}, {0, 2}, {0, 3}}},
		{"vertical top", [][2]int{{6, 2}, {6, 3}, {6, 4}, {6, 5}}},
		{"horizontal", [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"horizontal right", [][2]int{{3, 5}, {4, 5}, {5, 5}, {6, 5}}},
		{"diagonal up", [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"diagonal up high", [][2]int{{3, 2}, {4, 3}, {5, 4}, {6, 5}}},
		{"diagonal down", [][2]int{{0, 3}, {1, 2}, {2, 1}, {3, 0}}},
		{"diagonal down right", [][2]int{{3, 5}, {4, 4}, {5, 3}, {6, 2}}},
	}

	pos := NewPosition()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var bb Bitboard
			for _, c := range tc.cells {
				bb |= CellBB(c[0], c[1])
			}
			if !pos.IsWin(bb) {
				t.Errorf("four in a row not detected:\n%s", bb)
			}
			for skip := range tc.cells {
				three := bb &^ CellBB(tc.cells[skip][0], tc.cells[skip][1])
				if pos.IsWin(three) {
					t.Errorf("three stones reported as a win:\n%s", three)
				}
			}
		})
	}
}

func TestWinningLine(t *testing.T) {
	tests := []struct {
		moves string
		want  [WinLength]Cell
	}{
		{"1212121", [WinLength]Cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}}},
		{"1122334", [WinLength]Cell{{0, 0}, {1, 0}, {2, 0}, {3, 0}}},
		{"12233434474", [WinLength]Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"76655454414", [WinLength]Cell{{3, 3}, {4, 2}, {5, 1}, {6, 0}}},
	}
	for _, tc := range tests {
		t.Run(tc.moves, func(t *testing.T) {
			pos := mustParse(t, tc.moves)
			line, ok := pos.WinningLine()
			if !ok {
				t.Fatalf("no winning line in\n%s", pos)
			}
			if line != tc.want {
				t.Errorf("WinningLine() = %v, want %v", line, tc.want)
			}
		})
	}

	if _, ok := mustParse(t, "444").WinningLine(); ok {
		t.Error("winning line reported without a winner")
	}
}

func TestNoWinAcrossColumns(t *testing.T) {
	tests := []struct {
		name string
		bb   Bitboard
	}{
		// top of one column and bottom of the next are adjacent bits
		{"vertical wrap", CellBB(0, 4) | CellBB(0, 5) | CellBB(1, 0) | CellBB(1, 1)},
		{"diagonal wrap", CellBB(0, 5) | CellBB(1, 0) | CellBB(2, 1) | CellBB(3, 2)},
		{"scattered", CellBB(0, 0) | CellBB(2, 0) | CellBB(4, 0) | CellBB(6, 0)},
		{"empty", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.bb.HasFour() {
				t.Errorf("false win detected:\n%s", tc.bb)
			}
		})
	}
}

func TestIsDraw(t *testing.T) {
	// columns filled in pairs so no side ever gets four
	pos := mustParse(t, "121212212121343434434343565656656565777777")
	if !pos.IsDraw() {
		t.Fatalf("full board not a draw: moves=%d", pos.Moves())
	}
	if pos.Winner() != NoSide {
		t.Errorf("unexpected winner %s\n%s", pos.Winner(), pos)
	}
	if len(pos.LegalColumns()) != 0 {
		t.Error("full board has legal columns")
	}
}

func TestLegalColumnsOrder(t *testing.T) {
	pos := NewPosition()
	got := pos.LegalColumns()
	want := []int{3, 4, 2, 5, 1, 6, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LegalColumns() = %v, want %v", got, want)
		}
	}

	pos = mustParse(t, "444444")
	if cols := pos.LegalColumns(); len(cols) != Width-1 || cols[0] != 4 {
		t.Errorf("LegalColumns() with full center = %v", cols)
	}
}

func TestSuccessors(t *testing.T) {
	pos := mustParse(t, "4455")
	succ := pos.Successors()
	cols := pos.LegalColumns()
	if len(succ) != len(cols) {
		t.Fatalf("got %d successors, want %d", len(succ), len(cols))
	}
	for i := range succ {
		if c := pos.ColumnOf(&succ[i]); c != cols[i] {
			t.Errorf("successor %d reached by column %d, want %d", i, c, cols[i])
		}
	}
	if pos.Moves() != 4 {
		t.Error("Successors mutated the receiver")
	}
}

func TestFingerprint(t *testing.T) {
	seen := make(map[uint64]string)
	walk(NewPosition(), 6, func(p *Position) {
		key := p.Fingerprint()
		board := p.FormatBoard()
		if prev, ok := seen[key]; ok && prev != board {
			t.Fatalf("fingerprint %x shared by\n%s\nand\n%s", key, prev, board)
		}
		seen[key] = board
		if key >= 1<<49 {
			t.Fatalf("fingerprint %x exceeds 49 bits", key)
		}
	})

	// same stones, different transposition order
	a := mustParse(t, "4453")
	b := mustParse(t, "4354")
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("transposed positions have different fingerprints")
	}
}

func TestParseMovesErrors(t *testing.T) {
	tests := []struct {
		moves string
		err   error
	}{
		{"48", ErrInvalidColumn},
		{"40", ErrInvalidColumn},
		{"4a", ErrInvalidColumn},
		{"4444444", ErrColumnFull},
		{"12121213", ErrGameOver},
	}

	for _, tc := range tests {
		t.Run(tc.moves, func(t *testing.T) {
			_, err := ParseMoves(tc.moves)
			if !errors.Is(err, tc.err) {
				t.Errorf("ParseMoves(%q) error = %v, want %v", tc.moves, err, tc.err)
			}
		})
	}
}

func TestParseBoard(t *testing.T) {
	pos := mustParse(t, "4453")
	parsed, err := ParseBoard(pos.FormatBoard())
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	if *parsed != *pos {
		t.Errorf("ParseBoard(FormatBoard()) = %s, want %s", parsed, pos)
	}

	bad := []string{
		"x",
		".......\n.......\n.......\n.......\n.......\noo.....",
		".......\n.......\n.......\n.......\nx......\n.......",
		".......\n.......\n.......\n.......\n.......\n..z....",
	}
	for _, s := range bad {
		if _, err := ParseBoard(s); !errors.Is(err, ErrBadBoardString) {
			t.Errorf("ParseBoard(%q) error = %v, want %v", s, err, ErrBadBoardString)
		}
	}
}
