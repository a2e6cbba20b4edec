package resource

import (
	"fmt"
	"time"
)

// Pool is a clamped reservoir of one resource kind. After any mutation
// Zero <= Current <= Max <= LogicalMax holds.
type Pool[R Amount] struct {
	kind      *Kind[R]
	current   R
	max       R
	RegenRate R
	// carry keeps the fractional part of regeneration that integer kinds
	// cannot represent yet.
	carry float64
}

// NewPool builds a pool of kind. It panics when current is outside
// [kind.Zero, max]; max itself is clamped to the kind's logical maximum.
func (k *Kind[R]) NewPool(current, max, regenRate R) *Pool[R] {
	if current < k.Zero {
		panic(fmt.Sprintf("resource: %s pool current %v below zero", k.Name, current))
	}
	if current > max {
		panic(fmt.Sprintf("resource: %s pool current %v above max %v", k.Name, current, max))
	}
	p := &Pool[R]{kind: k, RegenRate: regenRate}
	p.max = clamp(max, k.Zero, k.LogicalMax)
	p.current = min(current, p.max)
	return p
}

func (p *Pool[R]) Kind() *Kind[R] {
	return p.kind
}

func (p *Pool[R]) Current() R {
	return p.current
}

func (p *Pool[R]) Max() R {
	return p.max
}

// SetCurrent clamps v to [Zero, Max].
func (p *Pool[R]) SetCurrent(v R) {
	p.current = clamp(v, p.kind.Zero, p.max)
}

// SetMax clamps v to [Zero, LogicalMax] and pulls Current down if needed.
func (p *Pool[R]) SetMax(v R) {
	p.max = clamp(v, p.kind.Zero, p.kind.LogicalMax)
	if p.current > p.max {
		p.current = p.max
	}
}

// Fill sets Current to Max.
func (p *Pool[R]) Fill() {
	p.current = p.max
}

// Add changes Current by v, clamped to [Zero, Max]. Negative v drains.
func (p *Pool[R]) Add(v R) {
	var zero R
	switch {
	case v >= zero:
		if v >= p.max-p.current {
			p.current = p.max
			return
		}
		p.current += v
	default:
		drain := zero - v
		if drain >= p.current-p.kind.Zero {
			p.current = p.kind.Zero
			return
		}
		p.current -= drain
	}
}

// Spend subtracts cost, stopping at Zero. It performs no affordability check:
// gating happens in an earlier phase.
func (p *Pool[R]) Spend(cost R) {
	var zero R
	if cost < zero {
		p.Add(zero - cost)
		return
	}
	if cost >= p.current-p.kind.Zero {
		p.current = p.kind.Zero
		return
	}
	p.current -= cost
}

// Regen adds RegenRate * dt. Fractions an integer kind cannot hold are carried
// to the next call.
func (p *Pool[R]) Regen(dt time.Duration) {
	if dt <= 0 {
		return
	}
	gain := p.kind.ToFloat(p.RegenRate)*dt.Seconds() + p.carry
	whole := p.kind.FromFloat(gain)
	p.carry = gain - p.kind.ToFloat(whole)
	if p.current == p.max && gain > 0 {
		p.carry = 0
	}
	p.Add(whole)
}

// Less reports whether Current is below cost.
func (p *Pool[R]) Less(cost R) bool {
	return p.current < cost
}

// Equal reports whether Current equals cost.
func (p *Pool[R]) Equal(cost R) bool {
	return p.current == cost
}

// Fraction returns Current/Max in [0, 1], for UI consumption.
func (p *Pool[R]) Fraction() float64 {
	span := p.kind.ToFloat(p.max) - p.kind.ToFloat(p.kind.Zero)
	if span <= 0 {
		return 0
	}
	return (p.kind.ToFloat(p.current) - p.kind.ToFloat(p.kind.Zero)) / span
}

func clamp[R Amount](v, lo, hi R) R {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
