package game

import (
	"sync"
	"time"
)

// DefaultBuzzWindow is how long a viewer may buzz after the window opens.
const DefaultBuzzWindow = 10 * time.Second

// Countdown is the client-local buzz-in timer. Starting it again or stopping
// it cancels the previous run; callbacks of a cancelled run never fire.
type Countdown struct {
	mu       sync.Mutex
	gen      uint64
	active   bool
	deadline time.Time
	timer    *time.Timer
	done     chan struct{}
	tick     time.Duration
}

// NewCountdown creates a stopped countdown that reports remaining time every
// tick.
func NewCountdown(tick time.Duration) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	return &Countdown{tick: tick}
}

// Start runs the countdown for d. onTick and onExpire may be nil.
func (c *Countdown) Start(d time.Duration, onTick func(remaining time.Duration), onExpire func()) {
	c.mu.Lock()
	c.stopLocked()
	c.gen++
	gen := c.gen
	c.active = true
	c.deadline = time.Now().Add(d)
	done := make(chan struct{})
	c.done = done
	c.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		if c.gen != gen || !c.active {
			c.mu.Unlock()
			return
		}
		c.active = false
		close(c.done)
		c.done = nil
		c.mu.Unlock()
		if onExpire != nil {
			onExpire()
		}
	})
	c.mu.Unlock()

	if onTick == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if rem := c.Remaining(); rem > 0 {
					onTick(rem)
				}
			}
		}
	}()
}

// Stop cancels a running countdown. It is safe to call at any time.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

// Active reports whether the window is still open. A deadline that has
// passed counts as closed even before the timer fires.
func (c *Countdown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active && time.Now().Before(c.deadline)
}

// Remaining is the time left, zero when stopped or expired.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return 0
	}
	if rem := time.Until(c.deadline); rem > 0 {
		return rem
	}
	return 0
}

func (c *Countdown) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	c.active = false
}
