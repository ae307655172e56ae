package board

// Perft counts the leaf nodes of the move tree to the given depth. Positions
// where the last mover has won, or the board is full, count as leaves.
func Perft(p *Position, depth int) int64 {
	if depth == 0 || p.LastMoverWon() || p.IsDraw() {
		return 1
	}

	var nodes int64
	for col := 0; col < Width; col++ {
		if !p.Apply(col) {
			continue
		}
		if depth == 1 {
			nodes++
		} else {
			nodes += Perft(p, depth-1)
		}
		p.Undo(col)
	}
	return nodes
}
