package testutil

import "sync/atomic"

// StepCounter hands out 1-based step numbers for a scenario run. Reset lets
// a second run of the same scenario reproduce the same numbering.
type StepCounter struct {
	n atomic.Int64
}

func NewStepCounter() *StepCounter { return new(StepCounter) }

// Next advances the counter and returns the new step number.
func (c *StepCounter) Next() int64 { return c.n.Add(1) }

// Current is the last number returned by Next, or 0.
func (c *StepCounter) Current() int64 { return c.n.Load() }

func (c *StepCounter) Reset() { c.n.Store(0) }
