package board

import "testing"

// scanWinningCells finds winning cells by trying every empty cell.
func scanWinningCells(own, occupied Bitboard) Bitboard {
	var r Bitboard
	for col := 0; col < Width; col++ {
		for row := 0; row < Height; row++ {
			cell := CellBB(col, row)
			if occupied&cell == 0 && (own | cell).HasFour() {
				r |= cell
			}
		}
	}
	return r
}

// scanOpponentWins plays every column and then every reply.
func scanOpponentWins(p *Position) [Width]bool {
	var out [Width]bool
	for col := 0; col < Width; col++ {
		if !p.Apply(col) {
			continue
		}
		for reply := 0; reply < Width; reply++ {
			if !p.Apply(reply) {
				continue
			}
			if p.LastMoverWon() {
				out[col] = true
			}
			p.Undo(reply)
		}
		p.Undo(col)
	}
	return out
}

func TestWinningCellsMatchesScan(t *testing.T) {
	for _, moves := range midgames {
		walk(mustParse(t, moves), 3, func(p *Position) {
			for _, s := range []Side{First, Second} {
				if p.Stones(s).HasFour() {
					continue
				}
				got := WinningCells(p.Stones(s), p.Occupied())
				want := scanWinningCells(p.Stones(s), p.Occupied())
				if got != want {
					t.Fatalf("WinningCells mismatch for %s\n%s\ngot\n%s\nwant\n%s", s, p, got, want)
				}
			}
		})
	}
}

func TestOpponentCanWinNextMatchesScan(t *testing.T) {
	for _, moves := range midgames {
		walk(mustParse(t, moves), 3, func(p *Position) {
			if p.LastMoverWon() || p.IsDraw() {
				return
			}
			got := OpponentCanWinNext(p)
			want := scanOpponentWins(p)
			if got != want {
				t.Fatalf("OpponentCanWinNext = %v, want %v\n%s", got, want, p)
			}
		})
	}
}

func TestCanWinNext(t *testing.T) {
	tests := []struct {
		moves string
		win   bool
		col   int
	}{
		{"", false, -1},
		{"4444", false, -1},
		{"121212", true, 0},    // x has three in column 1
		{"445566", true, 2},    // x has three on the bottom row
		{"4455662", false, -1}, // o has three on row 2 but nothing under the ends
	}

	for _, tc := range tests {
		t.Run(tc.moves, func(t *testing.T) {
			pos := mustParse(t, tc.moves)
			if pos.IsTerminal() {
				t.Fatalf("setup is terminal:\n%s", pos)
			}
			if got := CanWinNext(pos); got != tc.win {
				t.Errorf("CanWinNext = %v, want %v\n%s", got, tc.win, pos)
			}
			if tc.win && !IsWinningMove(pos, tc.col) {
				t.Errorf("IsWinningMove(%d) = false\n%s", tc.col, pos)
			}
		})
	}
}

func TestNonLosingColumns(t *testing.T) {
	for _, moves := range midgames {
		walk(mustParse(t, moves), 3, func(p *Position) {
			if p.LastMoverWon() || p.IsDraw() {
				return
			}
			loses := scanOpponentWins(p)
			keep := make(map[int]bool)
			for _, col := range NonLosingColumns(p) {
				keep[col] = true
				if loses[col] && !IsWinningMove(p, col) {
					t.Fatalf("column %d allows an immediate reply\n%s", col+1, p)
				}
			}
			for _, col := range p.LegalColumns() {
				if !keep[col] && (!loses[col] || IsWinningMove(p, col)) {
					t.Fatalf("column %d wrongly filtered\n%s", col+1, p)
				}
			}
			if len(NonLosingSuccessors(p)) != len(keep) {
				t.Fatal("NonLosingSuccessors disagrees with NonLosingColumns")
			}
		})
	}
}

func TestNonLosingKeepsWinningMove(t *testing.T) {
	// o to move: o wins in column 2, and blocking column 1 is the only other
	// move that does not hand x the game
	pos := mustParse(t, "1212127")
	cols := NonLosingColumns(pos)
	if len(cols) != 2 || cols[0] != 1 || cols[1] != 0 {
		t.Errorf("NonLosingColumns = %v, want [1 0]\n%s", cols, pos)
	}
}

func TestAllMovesLose(t *testing.T) {
	// o has three in columns 1 and 7; x can block only one
	pos := mustParse(t, "212141476767")
	if CanWinNext(pos) {
		t.Fatalf("x should not have a win\n%s", pos)
	}
	if cols := NonLosingColumns(pos); len(cols) != 0 {
		t.Errorf("NonLosingColumns = %v, want none", cols)
	}
	if succ := NonLosingSuccessors(pos); len(succ) != 0 {
		t.Errorf("NonLosingSuccessors returned %d positions", len(succ))
	}
	cand := CandidateColumns(pos)
	legal := pos.LegalColumns()
	if len(cand) != len(legal) {
		t.Errorf("CandidateColumns = %v, want %v", cand, legal)
	}
}
