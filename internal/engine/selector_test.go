package engine

import (
	"testing"

	"github.com/matryer/is"
)

// scriptedRand replays fixed values.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func TestPickBestTieGoesFirst(t *testing.T) {
	is := is.New(t)
	scores := []RootScore{{3, 1}, {4, 5}, {2, 5}, {5, -2}}
	is.Equal(pick(scores, PolicyBest, 0, nil).Column, 4)
}

func TestPickNoise(t *testing.T) {
	is := is.New(t)
	scores := []RootScore{{3, 2}, {4, 1}, {2, 0}}
	// 2+0.0 < 1+2.7
	rng := &scriptedRand{floats: []float64{0, 0.9, 0}}
	is.Equal(pick(scores, PolicyNoise, 3, rng).Column, 4)

	// no noise falls back to the best move
	is.Equal(pick(scores, PolicyNoise, 0, rng).Column, 3)
}

func TestPickProportional(t *testing.T) {
	is := is.New(t)
	// weights after shifting: 3, 1, 4
	scores := []RootScore{{3, 0}, {4, -2}, {2, 1}}
	tests := []struct {
		draw int
		want int
	}{
		{0, 3}, {2, 3}, {3, 4}, {4, 2}, {7, 2},
	}
	for _, tc := range tests {
		rng := &scriptedRand{ints: []int{tc.draw}}
		is.Equal(pick(scores, PolicyProportional, 0, rng).Column, tc.want)
	}
}

func TestSeededRandSourceIsDeterministic(t *testing.T) {
	is := is.New(t)
	a := NewRandSource([]byte("connect four"))
	b := NewRandSource([]byte("connect four"))
	for i := 0; i < 100; i++ {
		is.Equal(a.Intn(1000), b.Intn(1000))
		is.Equal(a.Float64(), b.Float64())
	}
}

func TestFormatScores(t *testing.T) {
	is := is.New(t)
	is.Equal(FormatScores([]RootScore{{3, 1}, {0, -2}}), "4:1 1:-2")
}
