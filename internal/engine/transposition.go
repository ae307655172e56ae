package engine

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// DefaultTTCapacity is the slot count used when memory allows. It is prime so
// that key % capacity spreads the structured fingerprints evenly.
const DefaultTTCapacity = 10411033

const (
	slotSize      = 8 // bytes per slot
	minTTCapacity = 1021
	scoreBits     = 8
	scoreMask     = 1<<scoreBits - 1

	// maxMemoryFraction caps the table at this share of system memory.
	maxMemoryFraction = 0.25
)

// TranspositionTable is a direct-mapped memo of upper bounds keyed by
// position fingerprint. Each slot is one word holding key<<8 | biased score,
// so a slot is read and written atomically and workers searching different
// root moves can share a table. Writes always replace; the last writer wins.
type TranspositionTable struct {
	slots []atomic.Uint64

	// Statistics (atomic for thread-safety)
	probes atomic.Uint64
	hits   atomic.Uint64
	writes atomic.Uint64
}

// NewTranspositionTable creates a table with the largest prime number of
// slots not above capacity. A capacity of 0 selects DefaultTTCapacity, reduced
// to fit in a quarter of system memory.
func NewTranspositionTable(capacity uint64) *TranspositionTable {
	totalMem := memory.TotalMemory()
	if capacity == 0 {
		capacity = DefaultTTCapacity
		if totalMem > 0 {
			fit := uint64(float64(totalMem) * maxMemoryFraction / slotSize)
			if fit < capacity {
				capacity = fit
			}
		}
	}
	if capacity < minTTCapacity {
		capacity = minTTCapacity
	}
	capacity = prevPrime(capacity)

	log.Debug().
		Uint64("slots", capacity).
		Str("size", humanize.IBytes(capacity*slotSize)).
		Str("system-memory", humanize.IBytes(totalMem)).
		Msg("transposition-table-size")

	return &TranspositionTable{
		slots: make([]atomic.Uint64, capacity),
	}
}

// prevPrime returns the largest prime <= n, for n >= 2.
func prevPrime(n uint64) uint64 {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n--
	}
	for ; n > 2; n -= 2 {
		if isPrime(n) {
			return n
		}
	}
	return 2
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

func (tt *TranspositionTable) index(key uint64) uint64 {
	return key % uint64(len(tt.slots))
}

// Get returns the score stored for key, if the slot still holds that key.
func (tt *TranspositionTable) Get(key uint64) (int, bool) {
	tt.probes.Add(1)
	slot := tt.slots[tt.index(key)].Load()
	// A written slot always has a nonzero score byte.
	if slot&scoreMask == 0 || slot>>scoreBits != key {
		return 0, false
	}
	tt.hits.Add(1)
	return int(slot&scoreMask) + MinScore - 1, true
}

// Set overwrites the slot for key. The score must lie in [MinScore, MaxScore]
// and key must fit in 56 bits; fingerprints use at most 49.
func (tt *TranspositionTable) Set(key uint64, score int) {
	tt.slots[tt.index(key)].Store(key<<scoreBits | uint64(score-MinScore+1))
	tt.writes.Add(1)
}

// Reset empties every slot and clears the statistics.
func (tt *TranspositionTable) Reset() {
	for i := range tt.slots {
		tt.slots[i].Store(0)
	}
	tt.probes.Store(0)
	tt.hits.Store(0)
	tt.writes.Store(0)
}

// Capacity returns the number of slots.
func (tt *TranspositionTable) Capacity() uint64 {
	return uint64(len(tt.slots))
}

// Probes returns the number of Get calls since the last Reset.
func (tt *TranspositionTable) Probes() uint64 {
	return tt.probes.Load()
}

// Hits returns the number of successful Get calls since the last Reset.
func (tt *TranspositionTable) Hits() uint64 {
	return tt.hits.Load()
}

// Writes returns the number of Set calls since the last Reset.
func (tt *TranspositionTable) Writes() uint64 {
	return tt.writes.Load()
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Fill returns the permille of occupied slots, sampled over the first 1000.
func (tt *TranspositionTable) Fill() int {
	sampleSize := 1000
	if len(tt.slots) < sampleSize {
		sampleSize = len(tt.slots)
	}
	used := 0
	for i := 0; i < sampleSize; i++ {
		if tt.slots[i].Load() != 0 {
			used++
		}
	}
	return used * 1000 / sampleSize
}
