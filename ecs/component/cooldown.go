package component

import "time"

// Cooldown is a recharge timer with a charge count. Charges regenerate one
// per full Duration; the ability is ready whenever at least one charge is
// available.
type Cooldown struct {
	Duration   time.Duration
	Elapsed    time.Duration
	Charges    int
	MaxCharges int
}

// NewCooldown returns a single-charge cooldown that starts ready.
func NewCooldown(d time.Duration) *Cooldown {
	return NewCooldownWithCharges(d, 1)
}

// NewCooldownWithCharges returns a cooldown holding maxCharges charges, all
// available. maxCharges below one is treated as one.
func NewCooldownWithCharges(d time.Duration, maxCharges int) *Cooldown {
	if maxCharges < 1 {
		maxCharges = 1
	}
	if d < 0 {
		d = 0
	}
	return &Cooldown{
		Duration:   d,
		Elapsed:    d,
		Charges:    maxCharges,
		MaxCharges: maxCharges,
	}
}

// Full reports whether every charge is available. A full cooldown does not
// tick.
func (c *Cooldown) Full() bool {
	return c.Charges >= c.MaxCharges
}

// Finished reports whether the ability may be activated.
func (c *Cooldown) Finished() bool {
	return c.Charges > 0
}

// Tick advances the recharge timer and restores charges for every completed
// window.
func (c *Cooldown) Tick(dt time.Duration) {
	if c.Full() || dt <= 0 {
		return
	}
	c.Elapsed += dt
	if c.Duration <= 0 {
		c.Charges = c.MaxCharges
		c.Elapsed = c.Duration
		return
	}
	for c.Elapsed >= c.Duration && c.Charges < c.MaxCharges {
		c.Charges++
		c.Elapsed -= c.Duration
	}
	if c.Full() {
		c.Elapsed = c.Duration
	}
}

// Start consumes a charge. The timer restarts from zero only when it was
// idle; a recharge already in progress keeps its progress.
func (c *Cooldown) Start() {
	if c.Full() {
		c.Elapsed = 0
	}
	if c.Charges > 0 {
		c.Charges--
	}
	if c.Duration <= 0 {
		c.Charges = c.MaxCharges
		c.Elapsed = c.Duration
	}
}

// Remaining returns the fraction of the current recharge window still to run,
// in [0, 1]. It is zero when every charge is available.
func (c *Cooldown) Remaining() float64 {
	if c.Full() || c.Duration <= 0 {
		return 0
	}
	left := 1 - float64(c.Elapsed)/float64(c.Duration)
	if left < 0 {
		return 0
	}
	if left > 1 {
		return 1
	}
	return left
}

var CooldownComponent = NewComponent[Cooldown]()
