// Package player implements the playback state machine: a queue with a
// current index, repeat/shuffle modes, and at most one live audio session.
package player

import (
	"math/rand"
	"sync"
	"time"

	"Sonicbar/model"
)

const (
	// DefaultVolume is the volume of a freshly constructed Player.
	DefaultVolume = 0.7
	// DefaultTickInterval is how often the live position is republished.
	DefaultTickInterval = time.Second
	// restartThreshold: Prev past this point rewinds instead of going back.
	restartThreshold = 3 * time.Second

	subscriberBuffer = 8
)

// Player owns the playback state. All mutation goes through its command
// methods; readers take snapshots.
type Player struct {
	mu sync.Mutex

	backend Backend
	rng     *rand.Rand
	tick    time.Duration

	queue   []model.Track
	index   int
	session *session
	nextGen uint64

	playing bool
	elapsed time.Duration
	volume  float64
	muted   bool
	repeat  model.RepeatMode
	shuffle bool

	minimized   bool
	sidebarOpen bool

	lastErr error
	closed  bool

	subs    map[int]chan model.PlaybackSnapshot
	nextSub int
}

// Option configures a Player.
type Option func(*Player)

// WithTickInterval sets the position polling interval.
func WithTickInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.tick = d
		}
	}
}

// WithRand sets the random source used for shuffle.
func WithRand(r *rand.Rand) Option {
	return func(p *Player) {
		if r != nil {
			p.rng = r
		}
	}
}

// WithVolume sets the initial volume, clamped into [0,1].
func WithVolume(v float64) Option {
	return func(p *Player) {
		p.volume = clampVolume(v)
		p.muted = p.volume == 0
	}
}

// New creates an idle Player that opens engines through backend.
func New(backend Backend, opts ...Option) *Player {
	p := &Player{
		backend:     backend,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		tick:        DefaultTickInterval,
		volume:      DefaultVolume,
		repeat:      model.RepeatOff,
		minimized:   true,
		sidebarOpen: true,
		subs:        make(map[int]chan model.PlaybackSnapshot),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns a copy of the current state.
func (p *Player) Snapshot() model.PlaybackSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// LastError returns the most recent media error, or nil.
func (p *Player) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Subscribe returns a channel receiving a snapshot after every state change
// and position tick. Slow readers see the latest snapshots; older ones are
// dropped. The returned func unsubscribes and closes the channel.
func (p *Player) Subscribe() (<-chan model.PlaybackSnapshot, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan model.PlaybackSnapshot, subscriberBuffer)
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
}

// Close tears down the session and closes all subscriber channels.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.destroySessionLocked()
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}

func (p *Player) snapshotLocked() model.PlaybackSnapshot {
	snap := model.PlaybackSnapshot{
		Queue:       append([]model.Track(nil), p.queue...),
		QueueIndex:  p.index,
		Playing:     p.playing,
		CurrentTime: p.elapsed.Seconds(),
		Volume:      p.volume,
		Muted:       p.muted,
		Repeat:      p.repeat,
		Shuffle:     p.shuffle,
		Minimized:   p.minimized,
		SidebarOpen: p.sidebarOpen,
	}
	if p.session != nil {
		track := p.session.track
		snap.CurrentSong = &track
		snap.SessionID = p.session.id
	}
	if p.lastErr != nil {
		snap.LastError = p.lastErr.Error()
	}
	return snap
}

// publishLocked fans the current snapshot out without blocking.
func (p *Player) publishLocked() {
	if len(p.subs) == 0 {
		return
	}
	snap := p.snapshotLocked()
	for _, ch := range p.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func clampVolume(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
