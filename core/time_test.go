package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestFrameCounter(t *testing.T) {
	var counter FrameCounter
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				counter.Advance()
			}
		}()
	}
	wg.Wait()

	if counter.FramesDrawn() != 1000 {
		t.Errorf("FramesDrawn = %d, want 1000", counter.FramesDrawn())
	}
}

func TestTimeLoop(t *testing.T) {
	timeService := NewTime(TimeConfiguration{FramesPerSecond: 1000})
	defer timeService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []uint64
	err := timeService.Loop(ctx, func(frame uint64) {
		seen = append(seen, frame)
		if frame == 3 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Fatalf("Loop returned %v", err)
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Errorf("frames %v", seen)
	}
	if timeService.Frames().FramesDrawn() != 3 {
		t.Errorf("FramesDrawn = %d", timeService.Frames().FramesDrawn())
	}
}

func TestNewTimeUnlimited(t *testing.T) {
	timeService := NewTime(TimeConfiguration{})
	defer timeService.Stop()

	if timeService.Fps() != 0 {
		t.Error("fps not kept")
	}
	select {
	case <-timeService.FpsTicker().C:
	case <-time.After(time.Second):
		t.Error("unlimited ticker didn't tick")
	}
}
