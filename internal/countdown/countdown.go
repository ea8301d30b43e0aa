// Package countdown ticks once a second towards a target instant and
// reports when that instant has passed.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Period is the interval between ticks.
const Period = time.Second

// StaleAfter is the longest remaining duration a fresh table can produce.
// Anything beyond it means the data behind the target is out of date.
const StaleAfter = 24 * time.Hour

// Tick is one evaluation of the countdown.
type Tick struct {
	Remaining time.Duration `json:"remaining"`
	Display   string        `json:"display"`
	Expired   bool          `json:"expired"`
	Stale     bool          `json:"stale,omitempty"`
}

// FormatHMS renders d as zero-padded HH:MM:SS. Hours are not capped.
// Non-positive durations render as "00:00:00".
func FormatHMS(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// Evaluate computes the tick for target as seen at now.
func Evaluate(target, now time.Time) Tick {
	remaining := target.Sub(now)
	return Tick{
		Remaining: remaining,
		Display:   FormatHMS(remaining),
		Expired:   remaining <= 0,
		Stale:     remaining > StaleAfter,
	}
}

// Countdown drives a Tick every Period until the target is reached.
// Expiry is the only way it finishes on its own; Stop cancels it early.
type Countdown struct {
	clock    clock.Clock
	target   time.Time
	onTick   func(Tick)
	onExpire func(Tick)

	mu      sync.Mutex
	ticker  *clock.Ticker
	done    chan struct{}
	stopped bool
}

// New creates a countdown towards target. onTick receives every tick that
// has time left; onExpire is called once with the first expired tick.
// Either callback may be nil.
func New(clk clock.Clock, target time.Time, onTick, onExpire func(Tick)) *Countdown {
	if clk == nil {
		clk = clock.New()
	}
	return &Countdown{
		clock:    clk,
		target:   target,
		onTick:   onTick,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// Target returns the instant being counted down to.
func (c *Countdown) Target() time.Time {
	return c.target
}

// Start registers the ticker and begins ticking in a new goroutine.
// Calling Start more than once, or after Stop, has no effect.
func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ticker != nil || c.stopped {
		return
	}
	c.ticker = c.clock.Ticker(Period)
	go c.run(c.ticker, c.done)
}

// Stop cancels the countdown. A callback already running when Stop is
// called still completes; no new tick is evaluated afterwards.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.ticker != nil {
		c.ticker.Stop()
	}
	close(c.done)
}

// Stopped reports whether the countdown was stopped or has expired.
func (c *Countdown) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

func (c *Countdown) run(ticker *clock.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !c.fire() {
				return
			}
		}
	}
}

// fire evaluates one tick. Callbacks run without the lock held so they may
// call Stop or start a new countdown. It returns false once the countdown
// is over.
func (c *Countdown) fire() bool {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return false
	}
	t := Evaluate(c.target, c.clock.Now())
	if t.Expired {
		c.stopped = true
		c.ticker.Stop()
		close(c.done)
	}
	c.mu.Unlock()

	if !t.Expired {
		if c.onTick != nil {
			c.onTick(t)
		}
		return true
	}
	if c.onExpire != nil {
		c.onExpire(t)
	}
	return false
}
