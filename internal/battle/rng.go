package battle

import (
	"math/rand/v2"
	"time"
)

func newRNG() *rand.Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>7|1))
}

// NewSeededRNG returns a deterministic source for reproducible message selection.
func NewSeededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// pick returns a uniformly chosen element, or the first one when rnd is nil.
func pick(rnd *rand.Rand, list []string) string {
	if len(list) == 0 {
		return ""
	}
	if rnd == nil {
		return list[0]
	}
	return list[rnd.IntN(len(list))]
}
