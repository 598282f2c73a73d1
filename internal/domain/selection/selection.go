// Package selection picks clips from a materials pool until their summed
// duration reaches a target.
//
// Sampling keeps two pools: a source shuffled once per job, and a draw pool
// copied from it. Each draw picks uniformly from the draw pool without
// removing the pick, so clips may repeat within one refill cycle. The draw
// pool is refilled wholesale from the source only when it is empty.
package selection

import (
	"math/rand/v2"

	"github.com/forPelevin/vidfill/internal/types"
)

type Selector struct {
	rng *rand.Rand
}

// New returns a Selector drawing from rng. A nil rng uses a randomly seeded one.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// NewSeeded returns a deterministic Selector.
func NewSeeded(seed uint64) *Selector {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Select returns clips whose total duration is >= target. The last clip may
// overshoot. The plan is empty only when the pool has no positive-duration
// asset or target <= 0.
func (s *Selector) Select(pool []types.MediaAsset, target float64) types.SelectionPlan {
	plan := types.SelectionPlan{Target: target}

	source := make([]types.MediaAsset, 0, len(pool))
	var once float64
	for _, a := range pool {
		if a.Duration > 0 {
			source = append(source, a)
			once += a.Duration
		}
	}
	plan.ShortInventory = once < target

	s.rng.Shuffle(len(source), func(i, j int) { source[i], source[j] = source[j], source[i] })
	draw := append([]types.MediaAsset(nil), source...)

	for plan.Total < target {
		if len(draw) == 0 {
			if len(source) == 0 {
				break
			}
			draw = append(draw[:0], source...)
			plan.Refills++
		}
		pick := draw[s.rng.IntN(len(draw))]
		plan.Clips = append(plan.Clips, pick)
		plan.Total += pick.Duration
	}
	return plan
}
