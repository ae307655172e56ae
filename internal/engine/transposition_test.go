package engine

import (
	"testing"

	"github.com/matryer/is"
)

func TestTranspositionGetSet(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(4096)
	is.Equal(tt.Capacity(), uint64(4093)) // largest prime not above 4096

	_, ok := tt.Get(12345)
	is.True(!ok)

	tt.Set(12345, 7)
	v, ok := tt.Get(12345)
	is.True(ok)
	is.Equal(v, 7)

	// extremes of the score range survive the bias
	tt.Set(1, MinScore)
	tt.Set(2, MaxScore)
	v, ok = tt.Get(1)
	is.True(ok)
	is.Equal(v, MinScore)
	v, ok = tt.Get(2)
	is.True(ok)
	is.Equal(v, MaxScore)

	is.Equal(tt.Writes(), uint64(3))
	is.Equal(tt.Hits(), uint64(3))
	is.Equal(tt.Probes(), uint64(4))
}

func TestTranspositionZeroKey(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1021)

	// the empty board fingerprints to zero and must not look stored
	_, ok := tt.Get(0)
	is.True(!ok)

	tt.Set(0, 0)
	v, ok := tt.Get(0)
	is.True(ok)
	is.Equal(v, 0)
}

func TestTranspositionOverwrite(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1021)
	a := uint64(5)
	b := a + tt.Capacity() // same slot

	tt.Set(a, 3)
	tt.Set(b, -4)

	_, ok := tt.Get(a)
	is.True(!ok) // last writer wins
	v, ok := tt.Get(b)
	is.True(ok)
	is.Equal(v, -4)
}

func TestTranspositionReset(t *testing.T) {
	is := is.New(t)
	tt := NewTranspositionTable(1021)
	for k := uint64(0); k < 500; k++ {
		tt.Set(k*977, int(k%21))
	}
	is.True(tt.Fill() > 0)

	tt.Reset()
	for k := uint64(0); k < 500; k++ {
		_, ok := tt.Get(k * 977)
		is.True(!ok)
	}
	is.Equal(tt.Fill(), 0)
	is.Equal(tt.Writes(), uint64(0))
}

func TestPrevPrime(t *testing.T) {
	is := is.New(t)
	is.Equal(prevPrime(DefaultTTCapacity), uint64(DefaultTTCapacity))
	is.Equal(prevPrime(1000), uint64(997))
	is.Equal(prevPrime(2), uint64(2))
	is.True(isPrime(1021))
	is.True(!isPrime(1023))
}
