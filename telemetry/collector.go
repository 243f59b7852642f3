// Package telemetry provides flock statistics, event bookmarks, performance
// tracking and CSV output.
package telemetry

import "github.com/pthm-cable/flock/flock"

// Collector cuts the run into windows of simulated time and produces one
// FlockStats per ensemble at the end of each window.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int
	dt                  float64

	// Current window tracking
	windowStartStep int

	// Per-window counters
	failedSteps int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	stepsPerWindow := 1
	if dt > 0 {
		stepsPerWindow = int(windowDurationSec/dt + 0.5)
	}
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
	}
}

// RecordFailedStep counts a step that returned an error.
func (c *Collector) RecordFailedStep() {
	c.failedSteps++
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces the stats of every ensemble and starts the next window.
// params[k] must be the parameters of flocks[k].
func (c *Collector) Flush(currentStep int, flocks []*flock.Flock, params []flock.Params) []FlockStats {
	out := make([]FlockStats, len(flocks))
	for k, f := range flocks {
		s := ComputeFlockStats(f, params[k])
		s.WindowStartStep = c.windowStartStep
		s.WindowEndStep = currentStep
		s.SimTimeSec = float64(currentStep) * c.dt
		out[k] = s
	}

	c.windowStartStep = currentStep
	c.failedSteps = 0
	return out
}

// FailedSteps returns the failed steps counted in the current window.
func (c *Collector) FailedSteps() int {
	return c.failedSteps
}

// WindowDurationSteps returns the number of steps per window.
func (c *Collector) WindowDurationSteps() int {
	return c.windowDurationSteps
}
