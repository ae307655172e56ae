package board

import "testing"

func TestPerft(t *testing.T) {
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 7},
		{2, 49},
		{3, 343},
		{4, 2401},
		{5, 16807},
		{6, 117649},
		// one sequence per column fills it after six plies
		{7, 823536},
	}

	pos := NewPosition()
	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("Perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func TestPerftStopsAtWin(t *testing.T) {
	// x has just completed a vertical four
	pos, err := ParseMoves("1212121")
	if err != nil {
		t.Fatal(err)
	}
	if got := Perft(pos, 3); got != 1 {
		t.Errorf("Perft from won position = %d, want 1", got)
	}
}
