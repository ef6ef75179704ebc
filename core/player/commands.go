package player

import (
	"time"

	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/samber/lo"
)

// SetQueue replaces the queue and starts playing tracks[startIndex].
func (p *Player) SetQueue(tracks []model.Track, startIndex int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if len(tracks) == 0 {
		return ErrQueueEmpty
	}
	if startIndex < 0 || startIndex >= len(tracks) {
		return ErrIndexOutOfRange
	}

	p.queue = append([]model.Track(nil), tracks...)
	p.index = startIndex
	logger.Info("[Player] 替换播放队列", logger.Int("length", len(tracks)), logger.Int("startIndex", startIndex))
	p.startSessionLocked(p.queue[startIndex])
	p.publishLocked()
	return nil
}

// AddToQueue appends a track without touching the live session.
func (p *Player) AddToQueue(track model.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, track)
	p.publishLocked()
}

// PlayAt jumps to index in the current queue.
func (p *Player) PlayAt(index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if len(p.queue) == 0 {
		return ErrQueueEmpty
	}
	if index < 0 || index >= len(p.queue) {
		return ErrIndexOutOfRange
	}
	p.index = index
	p.startSessionLocked(p.queue[index])
	p.publishLocked()
	return nil
}

// PlayPause toggles the live session between playing and paused.
func (p *Player) PlayPause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ErrNoSession
	}
	if p.playing {
		p.session.engine.Pause()
		p.playing = false
	} else {
		p.session.engine.Play()
		p.playing = true
	}
	p.publishLocked()
	return nil
}

// Play resumes the live session. With no session but a loaded queue it
// starts the track at the current index.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	switch {
	case p.session != nil:
		if !p.playing {
			p.session.engine.Play()
			p.playing = true
		}
	case len(p.queue) > 0:
		p.startSessionLocked(p.queue[p.index])
	default:
		return ErrQueueEmpty
	}
	p.publishLocked()
	return nil
}

// Pause pauses the live session.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ErrNoSession
	}
	if p.playing {
		p.session.engine.Pause()
		p.playing = false
		p.publishLocked()
	}
	return nil
}

// Next advances according to the repeat and shuffle modes.
func (p *Player) Next() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.nextLocked(); err != nil {
		return err
	}
	p.publishLocked()
	return nil
}

func (p *Player) nextLocked() error {
	n := len(p.queue)
	if n == 0 {
		return ErrQueueEmpty
	}

	// repeat one replays in place, keeping the same session.
	if p.repeat == model.RepeatOne {
		if p.session == nil {
			p.startSessionLocked(p.queue[p.index])
			return nil
		}
		p.session.engine.Seek(0)
		p.session.engine.Play()
		p.elapsed = 0
		p.playing = true
		return nil
	}

	next := p.index
	if p.shuffle {
		candidates := lo.Filter(lo.Range(n), func(i int, _ int) bool { return i != p.index })
		if len(candidates) > 0 {
			next = candidates[p.rng.Intn(len(candidates))]
		}
	} else {
		next = (p.index + 1) % n
		if next == 0 && p.repeat == model.RepeatOff {
			// end of queue: stop rather than loop
			p.destroySessionLocked()
			p.index = 0
			logger.Info("[Player] 队列播放完毕")
			return nil
		}
	}

	p.index = next
	p.startSessionLocked(p.queue[next])
	return nil
}

// Prev rewinds the current track if it has played past the restart
// threshold, otherwise moves to the previous track.
func (p *Player) Prev() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	n := len(p.queue)
	if n == 0 {
		return ErrQueueEmpty
	}

	if p.session != nil {
		p.elapsed = p.session.engine.Position()
		if p.elapsed > restartThreshold {
			p.seekLocked(0)
			p.publishLocked()
			return nil
		}
	}

	p.index = (p.index - 1 + n) % n
	p.startSessionLocked(p.queue[p.index])
	p.publishLocked()
	return nil
}

// Seek moves the live session to pos, clamped to the track bounds.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ErrNoSession
	}
	p.seekLocked(pos)
	p.publishLocked()
	return nil
}

func (p *Player) seekLocked(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	if length := p.session.track.Length(); length > 0 && pos > length {
		pos = length
	}
	p.session.engine.Seek(pos)
	p.elapsed = pos
}

// SetVolume sets the volume, clamped into [0,1]. Zero volume mutes.
// The value carries over to later sessions.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	p.muted = p.volume == 0
	if p.session != nil {
		p.session.engine.SetVolume(p.volume)
		p.session.engine.SetMuted(p.muted)
	}
	p.publishLocked()
}

// ToggleMute flips the mute flag of the live session.
func (p *Player) ToggleMute() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ErrNoSession
	}
	p.muted = !p.muted
	p.session.engine.SetMuted(p.muted)
	p.publishLocked()
	return nil
}

// ToggleRepeat cycles off -> all -> one -> off.
func (p *Player) ToggleRepeat() model.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = p.repeat.Next()
	p.publishLocked()
	return p.repeat
}

// ToggleShuffle flips the shuffle flag.
func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shuffle = !p.shuffle
	p.publishLocked()
	return p.shuffle
}

// ToggleMinimized flips the minimized player-bar preference.
func (p *Player) ToggleMinimized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minimized = !p.minimized
	p.publishLocked()
	return p.minimized
}

// ToggleSidebar flips the sidebar preference.
func (p *Player) ToggleSidebar() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = !p.sidebarOpen
	p.publishLocked()
	return p.sidebarOpen
}

// Cleanup stops and releases the live session and clears elapsed time and
// the playing flag. The queue is kept.
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroySessionLocked()
	p.publishLocked()
}
