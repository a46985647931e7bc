package core

import (
	"context"
	"sync/atomic"
	"time"
)

// FrameCounter counts frames drawn by the host. It only moves forward.
type FrameCounter struct {
	frames atomic.Uint64
}

// FramesDrawn returns the number of frames drawn so far.
func (f *FrameCounter) FramesDrawn() uint64 {
	return f.frames.Load()
}

// Advance counts one more frame and returns the new count.
func (f *FrameCounter) Advance() uint64 {
	return f.frames.Add(1)
}

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	var interval time.Duration
	if cfg.FramesPerSecond == 0 {
		interval = time.Nanosecond
	} else {
		interval = time.Second / (time.Duration)(cfg.FramesPerSecond)
	}

	return &Time{
		fps:       cfg.FramesPerSecond,
		fpsTicker: time.NewTicker(interval),
	}
}

// Time contains the frame clock and its ticker
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	frames FrameCounter
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// Frames returns the frame counter driven by Loop.
func (t *Time) Frames() *FrameCounter {
	return &t.frames
}

// Loop advances the frame counter on every tick and calls fn with
// the new frame, until ctx is done.
func (t *Time) Loop(ctx context.Context, fn func(frame uint64)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.fpsTicker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(t.frames.Advance())
		}
	}
}

// Stop stops the ticker.
func (t *Time) Stop() {
	t.fpsTicker.Stop()
}
