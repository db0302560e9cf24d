package weavetest

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// Epoch is the default wall clock time used by NewClock.
var Epoch = time.Date(2019, time.March, 1, 12, 0, 0, 0, time.UTC)

// NewClock returns a test clock frozen at Epoch. Move it forward using
// Advance or SetTime.
func NewClock() *clock.TestClock {
	return clock.NewTestClock(Epoch)
}

// Advance moves given test clock forward by d.
func Advance(c *clock.TestClock, d time.Duration) {
	c.SetTime(c.Now().Add(d))
}
