package sim

import "math"

// Clock is the simulated microsecond clock. It only moves forward, by a fixed step.
//
// Termination is driven by the step index, not by comparing timestamps, so a
// window ending near math.MaxInt64 never overflows.
type Clock struct {
	start int64
	step  int64
	steps int64
	now   int64
	index int64
}

// NewClock creates a clock positioned at start. Callers validate the window.
func NewClock(start, end, step int64) *Clock {
	if step <= 0 || end < start {
		panic("sim: invalid clock window")
	}
	return &Clock{start: start, step: step, steps: (end-start)/step + 1, now: start}
}

// Now returns the current simulated timestamp in microseconds.
func (c *Clock) Now() int64 { return c.now }

// Index returns how many steps have been completed.
func (c *Clock) Index() int64 { return c.index }

// Done reports whether every step of the window has been executed.
func (c *Clock) Done() bool { return c.index >= c.steps }

// Advance moves the clock forward by one step. After the last step the
// timestamp stays on the final sample.
func (c *Clock) Advance() {
	if c.Done() {
		return
	}
	c.index++
	if c.index < c.steps {
		c.now += c.step
	}
}

// Steps returns the total number of steps in the window, both ends included.
func (c *Clock) Steps() int64 { return c.steps }

// after returns now+delay, saturating at math.MaxInt64.
func after(now, delay int64) int64 {
	if delay > 0 && now > math.MaxInt64-delay {
		return math.MaxInt64
	}
	return now + delay
}
