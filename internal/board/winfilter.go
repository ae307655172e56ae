package board

// WinningCells returns the empty cells that would complete four in a row for
// own. Each direction is handled with shifts only: for stride d, a cell wins
// if three own stones sit on one side of it, or two on one side and one on the
// other.
func WinningCells(own, occupied Bitboard) Bitboard {
	// Vertical: only three stones directly below can complete a line.
	r := (own << 1) & (own << 2) & (own << 3)

	for _, d := range Directions[1:] {
		p := (own << d) & (own << (2 * d))
		r |= p & (own << (3 * d))
		r |= p & (own >> d)
		p = (own >> d) & (own >> (2 * d))
		r |= p & (own << d)
		r |= p & (own >> (3 * d))
	}
	return r & (BoardMask ^ occupied)
}

// PlayableCells returns the next free cell of every column that is not full.
func PlayableCells(p *Position) Bitboard {
	return (p.Occupied() + BottomMask) & BoardMask
}

// CanWinNext reports whether the side to move has an immediate win.
func CanWinNext(p *Position) bool {
	return WinningCells(p.Current(), p.Occupied())&PlayableCells(p) != 0
}

// IsWinningMove reports whether dropping into col completes four for the
// side to move.
func IsWinningMove(p *Position, col int) bool {
	if !p.CanPlay(col) {
		return false
	}
	cell := CellBB(col, p.Height(col))
	return WinningCells(p.Current(), p.Occupied())&cell != 0
}

// WinningColumns returns the columns that win immediately for the side to
// move, center first.
func WinningColumns(p *Position) []int {
	wins := WinningCells(p.Current(), p.Occupied()) & PlayableCells(p)
	if wins.Empty() {
		return nil
	}
	var cols []int
	for _, col := range ColumnOrder {
		if wins&ColumnMask(col) != 0 {
			cols = append(cols, col)
		}
	}
	return cols
}

// OpponentCanWinNext reports, per column, whether dropping a stone there lets
// the side not to move complete four on its reply. Full columns report false.
func OpponentCanWinNext(p *Position) [Width]bool {
	var out [Width]bool
	opp := p.Stones(p.SideToMove().Other())
	threats := WinningCells(opp, p.Occupied())
	playable := PlayableCells(p)

	for col := 0; col < Width; col++ {
		if !p.CanPlay(col) {
			continue
		}
		m := CellBB(col, p.Height(col))
		after := (playable &^ m) | ((m << 1) & BoardMask)
		out[col] = threats&^m&after != 0
	}
	return out
}

// NonLosingColumns returns, center first, the legal columns that either win
// immediately or leave the opponent without an immediate winning reply. The
// result is empty when every move loses at once.
func NonLosingColumns(p *Position) []int {
	cols := make([]int, 0, Width)
	for _, col := range ColumnOrder {
		if !p.CanPlay(col) {
			continue
		}
		if IsWinningMove(p, col) {
			cols = append(cols, col)
			continue
		}
		p.Apply(col)
		loses := CanWinNext(p)
		p.Undo(col)
		if !loses {
			cols = append(cols, col)
		}
	}
	return cols
}

// NonLosingSuccessors returns the positions reached by NonLosingColumns.
// Callers fall back to Successors when it is empty.
func NonLosingSuccessors(p *Position) []Position {
	cols := NonLosingColumns(p)
	next := make([]Position, 0, len(cols))
	for _, col := range cols {
		child := *p
		child.Apply(col)
		next = append(next, child)
	}
	return next
}

// CandidateColumns returns NonLosingColumns, or every legal column when no
// move avoids an immediate loss.
func CandidateColumns(p *Position) []int {
	if cols := NonLosingColumns(p); len(cols) > 0 {
		return cols
	}
	return p.LegalColumns()
}
