package seating

import (
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"seating-chart-go/models"
)

// Result summarizes a randomization pass.
type Result struct {
	Placed  int `json:"placed"`  // names seated
	Dropped int `json:"dropped"` // names left over because seats ran out
	Vacant  int `json:"vacant"`  // unlocked seats left empty
}

// Randomizer shuffles candidate names into the unlocked seats of a chart.
type Randomizer struct {
	rng *rand.Rand
}

// NewRandomizer uses rng for shuffling; nil picks a randomly seeded source.
func NewRandomizer(rng *rand.Rand) *Randomizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Randomizer{rng: rng}
}

// NewSeededRandomizer gives a reproducible shuffle order.
func NewSeededRandomizer(seed uint64) *Randomizer {
	return NewRandomizer(rand.New(rand.NewPCG(seed, seed)))
}

// SplitNames turns "Bob, Carol,,Dave " into [Bob Carol Dave].
func SplitNames(raw string) []string {
	names := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(names)
}

// RandomizeRaw splits a comma separated name list and randomizes with it.
func (r *Randomizer) RandomizeRaw(c *Chart, raw string) (Result, error) {
	return r.Randomize(c, SplitNames(raw))
}

// Randomize clears every unlocked seat and fills them, in table then seat
// order, with a shuffled prefix of names. Locked seats are left alone.
func (r *Randomizer) Randomize(c *Chart, names []string) (Result, error) {
	names = lo.Compact(names)
	if len(names) == 0 {
		return Result{}, ErrEmptyCandidates
	}

	var unlocked []*models.Seat
	for ti := range c.tables {
		for si := range c.tables[ti].Seats {
			if seat := &c.tables[ti].Seats[si]; !seat.Locked {
				unlocked = append(unlocked, seat)
			}
		}
	}

	n := min(len(names), len(unlocked))
	pool := make([]string, n)
	copy(pool, names[:n])
	r.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	for i, seat := range unlocked {
		seat.Occupant = nil
		if i < len(pool) {
			name := pool[i]
			seat.Occupant = &name
		}
	}

	res := Result{
		Placed:  n,
		Dropped: len(names) - n,
		Vacant:  len(unlocked) - n,
	}
	log.Info().Int("placed", res.Placed).Int("dropped", res.Dropped).Int("vacant", res.Vacant).
		Msgf("Randomized %d candidates over %d unlocked seats", len(names), len(unlocked))
	return res, nil
}
