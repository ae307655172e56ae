package board

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the notation parsers.
var (
	ErrInvalidColumn  = errors.New("invalid column")
	ErrColumnFull     = errors.New("column is full")
	ErrGameOver       = errors.New("game is already over")
	ErrBadBoardString = errors.New("malformed board string")
)

// ParseColumn parses a 1-based column digit into a 0-based column index.
func ParseColumn(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 1 || s[0] < '1' || s[0] > '0'+Width {
		return -1, fmt.Errorf("%w: %q", ErrInvalidColumn, s)
	}
	return int(s[0] - '1'), nil
}

// ParseMoves replays a string of 1-based column digits from the empty board,
// e.g. "4453". Whitespace is ignored. Moves after a win are rejected.
func ParseMoves(moves string) (*Position, error) {
	pos := NewPosition()
	if err := pos.PlayMoves(moves); err != nil {
		return nil, err
	}
	return pos, nil
}

// PlayMoves applies a string of 1-based column digits to the position.
// On error the position holds every move before the offending one.
func (p *Position) PlayMoves(moves string) error {
	for i, r := range moves {
		if r == ' ' || r == '\t' || r == '\n' {
			continue
		}
		col, err := ParseColumn(string(r))
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
		if err := p.Play(col); err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return nil
}

// Play applies a move with full checking: the game must not be over and the
// column must be on the board and have room.
func (p *Position) Play(col int) error {
	if p.IsTerminal() {
		return ErrGameOver
	}
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col+1)
	}
	if !p.Apply(col) {
		return fmt.Errorf("%w: %d", ErrColumnFull, col+1)
	}
	return nil
}

// ParseBoard parses a Height*Width grid of '.', 'x' and 'o', top row first.
// Whitespace and '|' separators are ignored. 'x' is the first player. The
// stone counts must be consistent with alternating play and the columns must
// have no gaps.
func ParseBoard(s string) (*Position, error) {
	cells := make([]byte, 0, Cells)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ', '\t', '\n', '\r', '|':
		case '.', 'x', 'X', 'o', 'O':
			cells = append(cells, c|0x20)
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", ErrBadBoardString, c)
		}
	}
	if len(cells) != Cells {
		return nil, fmt.Errorf("%w: need %d cells, got %d", ErrBadBoardString, Cells, len(cells))
	}

	pos := NewPosition()
	var counts [2]int
	for i, c := range cells {
		row := Height - 1 - i/Width
		col := i % Width
		if c == '.' {
			continue
		}
		side := First
		if c == 'o' {
			side = Second
		}
		pos.stones[side] |= CellBB(col, row)
		counts[side]++
	}

	for col := 0; col < Width; col++ {
		h := 0
		for h < Height && pos.Occupied().IsSet(col, h) {
			h++
		}
		pos.height[col] = uint8(h)
	}
	if counts[First] != counts[Second] && counts[First] != counts[Second]+1 {
		return nil, fmt.Errorf("%w: %d x stones and %d o stones", ErrBadBoardString, counts[First], counts[Second])
	}
	pos.moves = uint8(counts[First] + counts[Second])

	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBoardString, err)
	}
	return pos, nil
}

// FormatBoard renders the position in the form accepted by ParseBoard, one
// row per line.
func (p *Position) FormatBoard() string {
	var sb strings.Builder
	for row := Height - 1; row >= 0; row-- {
		for col := 0; col < Width; col++ {
			switch p.CellAt(col, row) {
			case First:
				sb.WriteByte('x')
			case Second:
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
