// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
	clocktesting "k8s.io/utils/clock/testing"
)

var _ clock.Clock = &SteppingClock{}

// SteppingClock is a fake clock whose After advances the clock by the requested duration and
// fires at once, so code that waits on it runs without real delay while Since still reports the
// simulated time. Set Hold to keep chosen waits pending forever.
type SteppingClock struct {
	*clocktesting.FakeClock

	mu     sync.Mutex
	Hold   func(d time.Duration, call int) bool
	afters []time.Duration
}

func NewSteppingClock(start time.Time) *SteppingClock {
	return &SteppingClock{FakeClock: clocktesting.NewFakeClock(start)}
}

func (c *SteppingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.afters = append(c.afters, d)
	call := len(c.afters)
	hold := c.Hold
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if hold != nil && hold(d, call) {
		return ch
	}
	c.Step(d)
	ch <- c.Now()
	return ch
}

// Afters returns every duration passed to After so far, in order.
func (c *SteppingClock) Afters() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.afters...)
}
