// Package media provides the playback position the timeline follows.
package media

import (
	"log/slog"
	"time"
)

// Player is the media/time collaborator: a current position and a seek.
type Player interface {
	CurrentTime() float64
	Seek(t float64)
}

// Clock is a Player driven by wall-clock time. It has no media of its own;
// it only advances a position between Play and Pause.
type Clock struct {
	duration float64
	now      func() time.Time
	logger   *slog.Logger

	pos     float64
	playing bool
	since   time.Time
}

// Option configures a Clock.
type Option func(*Clock)

// WithNow replaces time.Now, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Clock) { c.logger = l }
}

// NewClock returns a paused clock at 0 for media of the given duration in
// seconds.
func NewClock(duration float64, opts ...Option) *Clock {
	c := &Clock{duration: max(0, duration), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Clock) Duration() float64 { return c.duration }
func (c *Clock) Playing() bool     { return c.playing }

// CurrentTime returns the position in seconds. Playback stops at the end.
func (c *Clock) CurrentTime() float64 {
	if !c.playing {
		return c.pos
	}
	t := c.pos + c.now().Sub(c.since).Seconds()
	if t >= c.duration {
		c.pos, c.playing = c.duration, false
		c.logger.Debug("playback ended", "position", c.pos)
		return c.pos
	}
	return t
}

// Seek moves to t, clamped to [0, duration]. Playback state is kept.
func (c *Clock) Seek(t float64) {
	c.pos = min(max(t, 0), c.duration)
	c.since = c.now()
	c.logger.Debug("seek", "position", c.pos)
}

// Play starts advancing from the current position. At the end it restarts
// from 0.
func (c *Clock) Play() {
	if c.playing {
		return
	}
	if c.pos >= c.duration {
		c.pos = 0
	}
	c.since = c.now()
	c.playing = true
}

func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.pos = c.CurrentTime()
	c.playing = false
}

// Toggle switches between Play and Pause.
func (c *Clock) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}
