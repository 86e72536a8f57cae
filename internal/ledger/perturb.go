package ledger

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVolatility is the half-width of the refresh factor range.
const DefaultVolatility = 0.10

// Perturber draws the multiplicative factor applied to a price on refresh.
type Perturber interface {
	Factor() decimal.Decimal
}

// UniformPerturber draws factors uniformly from [1-v, 1+v).
type UniformPerturber struct {
	rng        *rand.Rand
	volatility float64
}

// NewUniformPerturber returns a perturber seeded with seed. A zero seed
// seeds from the clock.
func NewUniformPerturber(volatility float64, seed uint64) *UniformPerturber {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &UniformPerturber{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		volatility: volatility,
	}
}

func (p *UniformPerturber) Factor() decimal.Decimal {
	change := (p.rng.Float64()*2 - 1) * p.volatility
	return decimal.NewFromFloat(1 + change)
}

// FixedPerturber replays a fixed sequence of factors, cycling when exhausted.
type FixedPerturber struct {
	factors []decimal.Decimal
	next    int
}

func NewFixedPerturber(factors ...string) *FixedPerturber {
	p := &FixedPerturber{}
	for _, f := range factors {
		p.factors = append(p.factors, decimal.RequireFromString(f))
	}
	return p
}

func (p *FixedPerturber) Factor() decimal.Decimal {
	if len(p.factors) == 0 {
		return decimal.NewFromInt(1)
	}
	f := p.factors[p.next%len(p.factors)]
	p.next++
	return f
}
