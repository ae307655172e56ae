package board

import (
	"fmt"
	"math/bits"
	"strings"
)

// Side identifies a player. First moves on even move counts.
type Side uint8

const (
	First Side = iota
	Second
	NoSide
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

// String returns a display symbol for the side.
func (s Side) String() string {
	switch s {
	case First:
		return "x"
	case Second:
		return "o"
	}
	return "."
}

// Position is a packed two-player board.
//
// Invariants: the two stone sets never intersect, no column holds more than
// Height stones, and moves equals the number of stones on the board.
// Position is a value type; assigning it copies the whole board.
type Position struct {
	stones [2]Bitboard
	height [Width]uint8
	moves  uint8
}

// NewPosition creates an empty board.
func NewPosition() *Position {
	return &Position{}
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Reset empties the board.
func (p *Position) Reset() {
	*p = Position{}
}

// Moves returns the number of stones played so far.
func (p *Position) Moves() int {
	return int(p.moves)
}

// SideToMove returns the side that plays next.
func (p *Position) SideToMove() Side {
	return Side(p.moves & 1)
}

// Stones returns the stone set of a side.
func (p *Position) Stones(s Side) Bitboard {
	return p.stones[s]
}

// Current returns the stone set of the side to move.
func (p *Position) Current() Bitboard {
	return p.stones[p.moves&1]
}

// Occupied returns every occupied cell.
func (p *Position) Occupied() Bitboard {
	return p.stones[0] | p.stones[1]
}

// Height returns the number of stones in a column.
func (p *Position) Height(col int) int {
	return int(p.height[col])
}

// CanPlay returns true if col is on the board and not full.
func (p *Position) CanPlay(col int) bool {
	return col >= 0 && col < Width && p.Occupied()&TopCell(col) == 0
}

// Apply drops a stone for the side to move into col. It returns false and
// leaves the position untouched if the column is full or out of range.
func (p *Position) Apply(col int) bool {
	if !p.CanPlay(col) {
		return false
	}
	p.stones[p.moves&1] |= CellBB(col, int(p.height[col]))
	p.height[col]++
	p.moves++
	return true
}

// Undo takes back the last Apply(col). The caller must pair it with that
// Apply; calling it otherwise corrupts the position.
func (p *Position) Undo(col int) {
	p.moves--
	p.height[col]--
	p.stones[p.moves&1] &^= CellBB(col, int(p.height[col]))
}

// IsWin reports whether bb holds four in a row. It must be given a stone set
// taken from the position after the move being judged.
func (p *Position) IsWin(bb Bitboard) bool {
	return bb.HasFour()
}

// LastMoverWon reports whether the side that just moved has four in a row.
func (p *Position) LastMoverWon() bool {
	if p.moves == 0 {
		return false
	}
	return p.stones[(p.moves-1)&1].HasFour()
}

// Winner returns the side holding four in a row, or NoSide.
func (p *Position) Winner() Side {
	switch {
	case p.stones[First].HasFour():
		return First
	case p.stones[Second].HasFour():
		return Second
	}
	return NoSide
}

// Cell is a (column, row) pair, row 0 at the bottom.
type Cell struct {
	Col, Row int
}

// WinningLine returns the first four-in-a-row found for the winner, ordered
// by column and then by row.
func (p *Position) WinningLine() ([WinLength]Cell, bool) {
	var line [WinLength]Cell
	side := p.Winner()
	if side == NoSide {
		return line, false
	}
	b := p.stones[side]
	for _, d := range Directions {
		m := b & (b >> d) & (b >> (2 * d)) & (b >> (3 * d))
		if m == 0 {
			continue
		}
		i := bits.TrailingZeros64(uint64(m))
		for k := range line {
			bit := i + k*int(d)
			line[k] = Cell{Col: bit / Stride, Row: bit % Stride}
		}
		return line, true
	}
	return line, false
}

// IsDraw returns true when the board is full.
func (p *Position) IsDraw() bool {
	return p.moves == Cells
}

// IsTerminal returns true if the game has ended.
func (p *Position) IsTerminal() bool {
	return p.IsDraw() || p.Winner() != NoSide
}

// LegalColumns returns the playable columns, center first.
func (p *Position) LegalColumns() []int {
	cols := make([]int, 0, Width)
	for _, col := range ColumnOrder {
		if p.height[col] < Height {
			cols = append(cols, col)
		}
	}
	return cols
}

// Successors returns a copy of the position after each legal move, center first.
func (p *Position) Successors() []Position {
	next := make([]Position, 0, Width)
	for _, col := range ColumnOrder {
		child := *p
		if child.Apply(col) {
			next = append(next, child)
		}
	}
	return next
}

// Fingerprint encodes the position as stones-to-move plus occupancy. Adding
// the occupancy sets a bit just above each column's stack, so the sum is
// unique per position and differs between the two sides to move.
func (p *Position) Fingerprint() uint64 {
	return uint64(p.Current() + p.Occupied())
}

// ColumnOf returns the column in which child differs from p, or -1 if child
// is not a one-move successor of p.
func (p *Position) ColumnOf(child *Position) int {
	if int(child.moves) != int(p.moves)+1 {
		return -1
	}
	for col := 0; col < Width; col++ {
		if child.height[col] == p.height[col]+1 {
			return col
		}
	}
	return -1
}

// CellAt returns the side occupying (col, row), or NoSide.
func (p *Position) CellAt(col, row int) Side {
	switch {
	case p.stones[First].IsSet(col, row):
		return First
	case p.stones[Second].IsSet(col, row):
		return Second
	}
	return NoSide
}

// Validate checks the structural invariants.
func (p *Position) Validate() error {
	if p.stones[0]&p.stones[1] != 0 {
		return fmt.Errorf("stone sets overlap")
	}
	if p.Occupied()&^BoardMask != 0 {
		return fmt.Errorf("stones on guard row")
	}
	total := 0
	for col := 0; col < Width; col++ {
		h := int(p.height[col])
		if h > Height {
			return fmt.Errorf("column %d height %d exceeds %d", col+1, h, Height)
		}
		if p.Occupied()&ColumnMask(col) != ((1<<uint(h))-1)<<uint(col*Stride) {
			return fmt.Errorf("column %d has gaps", col+1)
		}
		total += h
	}
	if total != int(p.moves) || p.Occupied().PopCount() != int(p.moves) {
		return fmt.Errorf("move counter %d does not match %d stones", p.moves, p.Occupied().PopCount())
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for row := Height - 1; row >= 0; row-- {
		sb.WriteString("| ")
		for col := 0; col < Width; col++ {
			sb.WriteString(p.CellAt(col, row).String())
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("  1 2 3 4 5 6 7\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove())
	fmt.Fprintf(&sb, "Moves: %d\n", p.moves)
	fmt.Fprintf(&sb, "Key: %013x\n", p.Fingerprint())
	return sb.String()
}
