package audio

import (
	"sync"
	"testing"
	"time"

	"Sonicbar/core/player"
	"Sonicbar/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestClockEnginePosition(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := &ClockBackend{now: clock.Now}
	e, err := b.Open(model.Track{ID: "a", Duration: 100}, player.EngineOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Unload()

	if e.Position() != 0 {
		t.Fatalf("expected 0 before play, got %v", e.Position())
	}
	e.Play()
	clock.Advance(10 * time.Second)
	if got := e.Position(); got != 10*time.Second {
		t.Errorf("expected 10s, got %v", got)
	}

	e.Pause()
	clock.Advance(time.Minute)
	if got := e.Position(); got != 10*time.Second {
		t.Errorf("paused engine moved to %v", got)
	}

	e.Seek(95 * time.Second)
	if got := e.Position(); got != 95*time.Second {
		t.Errorf("expected 95s after seek, got %v", got)
	}
	e.Seek(time.Hour)
	if got := e.Position(); got != 100*time.Second {
		t.Errorf("seek should clamp to length, got %v", got)
	}
}

func TestClockEngineFiresEnd(t *testing.T) {
	ended := make(chan struct{}, 1)
	b := NewClockBackend()
	e, err := b.Open(model.Track{ID: "a", Duration: 1}, player.EngineOptions{
		Events: player.EngineEvents{OnEnd: func() { ended <- struct{}{} }},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Unload()

	e.Seek(time.Second - 20*time.Millisecond)
	e.Play()
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("end event not delivered")
	}
}

func TestClockEngineUnloadSuppressesEnd(t *testing.T) {
	ended := make(chan struct{}, 1)
	e, _ := NewClockBackend().Open(model.Track{ID: "a", Duration: 1}, player.EngineOptions{
		Events: player.EngineEvents{OnEnd: func() { ended <- struct{}{} }},
	})
	e.Seek(time.Second - 20*time.Millisecond)
	e.Play()
	e.Stop()
	e.Unload()

	select {
	case <-ended:
		t.Fatal("released engine fired end event")
	case <-time.After(100 * time.Millisecond):
	}
}
