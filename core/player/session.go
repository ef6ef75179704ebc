package player

import (
	"time"

	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/google/uuid"
)

// session is the live engine binding for the current track.
type session struct {
	id     string
	gen    uint64
	track  model.Track
	engine Engine
	stop   chan struct{}
}

// startSessionLocked destroys any live session, then opens a new one for
// track and starts playing it.
func (p *Player) startSessionLocked(track model.Track) {
	p.destroySessionLocked()

	p.nextGen++
	gen := p.nextGen
	events := EngineEvents{
		OnEnd:       func() { p.handleEnded(gen) },
		OnLoadError: func(err error) { p.handleMediaError(gen, MediaLoadError, err) },
		OnPlayError: func(err error) { p.handleMediaError(gen, MediaPlayError, err) },
	}

	engine, err := p.backend.Open(track, EngineOptions{
		Volume: p.volume,
		Muted:  p.muted,
		Events: events,
	})
	if err != nil {
		p.lastErr = &MediaError{Kind: MediaLoadError, TrackID: track.ID, Err: err}
		logger.Error("[Player] 打开音频失败",
			logger.String("trackId", track.ID),
			logger.String("title", track.Title),
			logger.ErrorField(err))
		return
	}

	s := &session{
		id:     uuid.NewString(),
		gen:    gen,
		track:  track,
		engine: engine,
		stop:   make(chan struct{}),
	}
	p.session = s
	p.elapsed = 0
	p.playing = true
	p.lastErr = nil
	engine.Play()

	go p.poll(s)

	logger.Info("[Player] 开始播放",
		logger.String("sessionId", s.id),
		logger.String("trackId", track.ID),
		logger.String("title", track.Title),
		logger.Int("queueIndex", p.index))
}

// destroySessionLocked stops and releases the live session, if any. The
// poller is told to exit and any tick it still delivers is discarded
// because the session no longer matches.
func (p *Player) destroySessionLocked() {
	s := p.session
	if s == nil {
		return
	}
	p.session = nil
	close(s.stop)
	s.engine.Stop()
	s.engine.Unload()
	p.playing = false
	p.elapsed = 0

	logger.Debug("[Player] 释放会话", logger.String("sessionId", s.id), logger.String("trackId", s.track.ID))
}

// poll republishes the live position while the session is playing.
func (p *Player) poll(s *session) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			p.syncSession(s)
		}
	}
}

// SyncPosition reads the engine's live position into the tracked elapsed
// time, exactly as a polling tick would.
func (p *Player) SyncPosition() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s != nil {
		p.syncSession(s)
	}
}

func (p *Player) syncSession(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != s || !p.playing {
		return
	}
	p.elapsed = s.engine.Position()
	p.publishLocked()
}

// currentLocked reports whether gen identifies the live session.
func (p *Player) currentLocked(gen uint64) bool {
	return p.session != nil && p.session.gen == gen
}

func (p *Player) handleEnded(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.currentLocked(gen) {
		return
	}
	logger.Debug("[Player] 曲目播放结束", logger.String("trackId", p.session.track.ID))
	if err := p.nextLocked(); err != nil {
		logger.Warn("[Player] 自动切换下一首失败", logger.ErrorField(err))
	}
	p.publishLocked()
}

func (p *Player) handleMediaError(gen uint64, kind MediaErrorKind, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.currentLocked(gen) {
		return
	}
	trackID := p.session.track.ID
	p.lastErr = &MediaError{Kind: kind, TrackID: trackID, Err: err}
	p.playing = false
	logger.Error("[Player] 音频错误",
		logger.String("kind", string(kind)),
		logger.String("sessionId", p.session.id),
		logger.String("trackId", trackID),
		logger.ErrorField(err))
	p.publishLocked()
}
