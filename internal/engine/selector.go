package engine

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"lukechampine.com/frand"
)

// RandSource is the only source of randomness used when choosing a move.
type RandSource interface {
	Intn(n int) int
	Float64() float64
}

// NewRandSource returns a cryptographically seeded source, or a
// deterministic one when seed is non-empty. Seeds longer than 32 bytes are
// truncated.
func NewRandSource(seed []byte) RandSource {
	if len(seed) == 0 {
		return frand.New()
	}
	var key [32]byte
	copy(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}

// Policy decides how root scores become a move.
type Policy int

const (
	// PolicyBest picks the highest score, ties going to the more central column.
	PolicyBest Policy = iota
	// PolicyNoise adds uniform noise in [0, Noise) to each score before taking the best.
	PolicyNoise
	// PolicyProportional samples a move with probability proportional to its
	// score shifted to be positive.
	PolicyProportional
)

var policyNames = map[Policy]string{
	PolicyBest:         "best",
	PolicyNoise:        "noise",
	PolicyProportional: "proportional",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// RootScore is the score of one root move for the side to move.
type RootScore struct {
	Column int
	Score  int
}

func (r RootScore) String() string {
	return fmt.Sprintf("%d:%d", r.Column+1, r.Score)
}

// FormatScores renders root scores as "col:score" pairs with 1-based columns.
func FormatScores(scores []RootScore) string {
	return strings.Join(lo.Map(scores, func(r RootScore, _ int) string {
		return r.String()
	}), " ")
}

// pick applies the policy to non-empty scores and returns the chosen entry.
func pick(scores []RootScore, policy Policy, noise float64, rng RandSource) RootScore {
	switch policy {
	case PolicyNoise:
		if noise <= 0 || rng == nil {
			break
		}
		type noisy struct {
			RootScore
			value float64
		}
		perturbed := lo.Map(scores, func(r RootScore, _ int) noisy {
			return noisy{r, float64(r.Score) + rng.Float64()*noise}
		})
		return lo.MaxBy(perturbed, func(a, b noisy) bool {
			return a.value > b.value
		}).RootScore

	case PolicyProportional:
		if rng == nil {
			break
		}
		low := lo.MinBy(scores, func(a, b RootScore) bool {
			return a.Score < b.Score
		}).Score
		// Every candidate keeps a weight of at least one.
		weights := lo.Map(scores, func(r RootScore, _ int) int {
			return r.Score - low + 1
		})
		n := rng.Intn(lo.Sum(weights))
		for i, w := range weights {
			if n < w {
				return scores[i]
			}
			n -= w
		}
	}

	return lo.MaxBy(scores, func(a, b RootScore) bool {
		return a.Score > b.Score
	})
}
