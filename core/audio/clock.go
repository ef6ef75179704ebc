package audio

import (
	"sync"
	"time"

	"Sonicbar/core/player"
	"Sonicbar/model"
)

// ClockBackend opens silent engines that only keep time. They report the
// position a real device would and fire OnEnd when the track length runs
// out, which keeps the queue moving on headless hosts.
type ClockBackend struct {
	now func() time.Time
}

// NewClockBackend returns a silent backend driven by the wall clock.
func NewClockBackend() *ClockBackend {
	return &ClockBackend{now: time.Now}
}

func (b *ClockBackend) Open(track model.Track, opts player.EngineOptions) (player.Engine, error) {
	return &clockEngine{
		now:    b.now,
		length: track.Length(),
		events: opts.Events,
	}, nil
}

type clockEngine struct {
	mu     sync.Mutex
	now    func() time.Time
	length time.Duration
	events player.EngineEvents

	offset    time.Duration
	startedAt time.Time
	playing   bool
	timer     *time.Timer
	timerGen  int
	released  bool
}

func (e *clockEngine) positionLocked() time.Duration {
	pos := e.offset
	if e.playing {
		pos += e.now().Sub(e.startedAt)
	}
	if e.length > 0 && pos > e.length {
		pos = e.length
	}
	return pos
}

// scheduleLocked arms the end-of-track timer. Tracks with unknown length
// never end on their own.
func (e *clockEngine) scheduleLocked() {
	e.cancelTimerLocked()
	if !e.playing || e.released || e.length <= 0 {
		return
	}
	gen := e.timerGen
	e.timer = time.AfterFunc(e.length-e.positionLocked(), func() { e.fire(gen) })
}

func (e *clockEngine) cancelTimerLocked() {
	e.timerGen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *clockEngine) fire(gen int) {
	e.mu.Lock()
	if gen != e.timerGen || e.released || !e.playing {
		e.mu.Unlock()
		return
	}
	e.offset = e.length
	e.playing = false
	e.timer = nil
	e.mu.Unlock()

	if e.events.OnEnd != nil {
		e.events.OnEnd()
	}
}

func (e *clockEngine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing || e.released {
		return
	}
	if e.length > 0 && e.offset >= e.length {
		e.offset = 0
	}
	e.startedAt = e.now()
	e.playing = true
	e.scheduleLocked()
}

func (e *clockEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.offset = e.positionLocked()
	e.playing = false
	e.cancelTimerLocked()
}

func (e *clockEngine) Seek(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if e.length > 0 && pos > e.length {
		pos = e.length
	}
	e.offset = pos
	e.startedAt = e.now()
	e.scheduleLocked()
}

func (e *clockEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *clockEngine) SetVolume(float64) {}
func (e *clockEngine) SetMuted(bool)     {}

func (e *clockEngine) Stop() {
	e.Pause()
}

func (e *clockEngine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.released = true
	e.playing = false
	e.cancelTimerLocked()
}
