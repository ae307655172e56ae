// Package board implements the Connect-Four board as a pair of bitboards.
package board

import (
	"math/bits"
	"strings"
)

// Board geometry. These are fixed at compile time.
const (
	Width     = 7
	Height    = 6
	Cells     = Width * Height
	WinLength = 4

	// Stride is the number of bits per column: Height cells plus one guard bit.
	Stride = Height + 1

	// KeyBits bounds the width of a Fingerprint.
	KeyBits = Width * Stride
)

// Bitboard is a column-major set of cells. Bit col*Stride+row is the cell at
// (col, row), row 0 being the bottom. The top bit of every column is a guard
// that is never occupied, so shifts along any direction cannot carry a run
// from one column into the next.
//
//	  6 13 20 27 34 41 48   guard row
//	+---------------------+
//	| 5 12 19 26 33 40 47 |
//	| 4 11 18 25 32 39 46 |
//	| 3 10 17 24 31 38 45 |
//	| 2  9 16 23 30 37 44 |
//	| 1  8 15 22 29 36 43 |
//	| 0  7 14 21 28 35 42 |
//	+---------------------+
type Bitboard uint64

// Direction strides used by the line tests: vertical, horizontal and the two diagonals.
const (
	Vertical     = 1
	Horizontal   = Stride
	DiagonalDown = Stride - 1
	DiagonalUp   = Stride + 1
)

// Directions lists the four line strides.
var Directions = [4]uint{Vertical, Horizontal, DiagonalDown, DiagonalUp}

// ColumnOrder is the center-outward order in which columns are tried.
var ColumnOrder = [Width]int{3, 4, 2, 5, 1, 6, 0}

// Masks.
var (
	// BottomMask has the bottom cell of every column set.
	BottomMask Bitboard
	// BoardMask has every playable (non-guard) cell set.
	BoardMask Bitboard
)

func init() {
	for col := 0; col < Width; col++ {
		BottomMask |= BottomCell(col)
	}
	BoardMask = BottomMask * ((1 << Height) - 1)
}

// CellBB returns a bitboard with only (col, row) set.
func CellBB(col, row int) Bitboard {
	return 1 << uint(col*Stride+row)
}

// BottomCell returns the bottom cell of a column.
func BottomCell(col int) Bitboard {
	return 1 << uint(col*Stride)
}

// TopCell returns the highest playable cell of a column.
func TopCell(col int) Bitboard {
	return 1 << uint(col*Stride+Height-1)
}

// ColumnMask returns all playable cells of a column.
func ColumnMask(col int) Bitboard {
	return ((1 << Height) - 1) << uint(col*Stride)
}

// IsSet returns true if (col, row) is set.
func (b Bitboard) IsSet(col, row int) bool {
	return b&CellBB(col, row) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// Empty returns true if no bits are set.
func (b Bitboard) Empty() bool {
	return b == 0
}

// HasFour reports whether the set contains WinLength cells in a row along any
// direction. For each stride d, b & b>>d marks the start of every pair; doing it
// again with 2d marks the start of every run of four.
func (b Bitboard) HasFour() bool {
	for _, d := range Directions {
		m := b & (b >> d)
		if m&(m>>(2*d)) != 0 {
			return true
		}
	}
	return false
}

// String returns a visual representation of the bitboard, top row first.
func (b Bitboard) String() string {
	var sb strings.Builder
	for row := Height - 1; row >= 0; row-- {
		for col := 0; col < Width; col++ {
			if b.IsSet(col, row) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("1 2 3 4 5 6 7\n")
	return sb.String()
}
