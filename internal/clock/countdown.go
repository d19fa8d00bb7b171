// Package clock provides the cancellable per-turn countdown.
package clock

import (
	"fmt"
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// TickFunc receives the countdown generation and the seconds left.
type TickFunc func(gen uint64, remaining int)

// TimeoutFunc is called once when a countdown reaches zero.
type TimeoutFunc func(gen uint64)

// Countdown ticks once per second and fires a single timeout. Only one
// countdown runs at a time: Start cancels the previous one. Every Start and
// Stop bumps the generation so callers can discard callbacks from a
// cancelled countdown.
//
// Callbacks run on the countdown goroutine without any internal lock held.
type Countdown struct {
	mu        sync.Mutex
	clk       bclock.Clock
	logger    *zap.Logger
	onTick    TickFunc
	onTimeout TimeoutFunc
	gen       uint64
	running   bool
	remaining int
	stop      chan struct{}
}

// New creates a stopped countdown. A nil clk uses the wall clock.
func New(clk bclock.Clock, logger *zap.Logger) *Countdown {
	if clk == nil {
		clk = bclock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Countdown{clk: clk, logger: logger}
}

// OnTick registers the tick callback.
func (c *Countdown) OnTick(fn TickFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = fn
}

// OnTimeout registers the timeout callback.
func (c *Countdown) OnTimeout(fn TimeoutFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTimeout = fn
}

// Start begins a countdown of budgetSeconds and returns its generation.
func (c *Countdown) Start(budgetSeconds int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.gen++
	c.running = true
	c.remaining = budgetSeconds
	c.stop = make(chan struct{})

	deadline := c.clk.Now().Add(time.Duration(budgetSeconds) * time.Second)
	ticker := c.clk.Ticker(time.Second)
	go c.run(c.gen, ticker, c.stop, deadline)

	c.logger.Debug("countdown started", zap.Uint64("gen", c.gen), zap.Int("seconds", budgetSeconds))
	return c.gen
}

// Stop cancels the running countdown. Calling it when stopped only bumps
// the generation.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.gen++
}

func (c *Countdown) cancelLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.running = false
}

func (c *Countdown) run(gen uint64, ticker *bclock.Ticker, stop <-chan struct{}, deadline time.Time) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		left := deadline.Sub(c.clk.Now())
		remaining := int((left + time.Second - 1) / time.Second)
		if remaining < 0 {
			remaining = 0
		}

		c.mu.Lock()
		if c.gen != gen || !c.running {
			c.mu.Unlock()
			return
		}
		c.remaining = remaining
		done := remaining == 0
		if done {
			c.running = false
			c.stop = nil
		}
		tick, timeout := c.onTick, c.onTimeout
		c.mu.Unlock()

		if tick != nil {
			tick(gen, remaining)
		}
		if done {
			c.logger.Debug("countdown expired", zap.Uint64("gen", gen))
			if timeout != nil {
				timeout(gen)
			}
			return
		}
	}
}

// Remaining returns the seconds left on the last countdown.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether a countdown is in progress.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Generation returns the current generation.
func (c *Countdown) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Dispose stops the countdown and drops the callbacks.
func (c *Countdown) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
	c.gen++
	c.onTick = nil
	c.onTimeout = nil
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
