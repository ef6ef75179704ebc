//go:build (linux && cgo) || windows || darwin

package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"Sonicbar/core/player"
	"Sonicbar/logger"
	"Sonicbar/model"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// Available reports whether this build can drive a sound device.
const Available = true

var speakerRate = beep.SampleRate(44100)

// BeepBackend opens engines that decode mp3 and play through the speaker.
type BeepBackend struct {
	fetcher *Fetcher

	// 输出端，默认是 speaker
	decode     func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)
	initOutput func() error
	play       func(...beep.Streamer)
	lock       sync.Locker

	initOnce sync.Once
	initErr  error
}

// NewBackend creates a speaker backend loading media through fetcher.
func NewBackend(fetcher *Fetcher) player.Backend {
	return &BeepBackend{
		fetcher: fetcher,
		decode:  mp3.Decode,
		initOutput: func() error {
			return speaker.Init(speakerRate, speakerRate.N(time.Second/10))
		},
		play: speaker.Play,
		lock: speakerLock{},
	}
}

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

func (b *BeepBackend) initSpeaker() error {
	b.initOnce.Do(func() {
		b.initErr = b.initOutput()
	})
	return b.initErr
}

// Open returns immediately; the media loads in the background and load
// failures arrive through OnLoadError.
func (b *BeepBackend) Open(track model.Track, opts player.EngineOptions) (player.Engine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &beepEngine{
		backend: b,
		track:   track,
		events:  opts.Events,
		volume:  opts.Volume,
		muted:   opts.Muted,
		cancel:  cancel,
	}
	go e.load(ctx)
	return e, nil
}

type beepEngine struct {
	backend *BeepBackend
	track   model.Track
	events  player.EngineEvents
	cancel  context.CancelFunc

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	playing  bool
	pending  time.Duration // seek requested before the media finished loading
	volume   float64
	muted    bool

	// 以下两个在输出线程里读写，不能拿 mu
	released atomic.Bool
	// 流播完后混音器会把它移除，之后的 Seek/Play 要重新接上
	drained  atomic.Bool
}

func (e *beepEngine) load(ctx context.Context) {
	data, err := e.backend.fetcher.Fetch(ctx, e.track.URL)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			go e.emitLoadError(err)
		}
		return
	}

	streamer, format, err := e.backend.decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		go e.emitLoadError(err)
		return
	}
	if err := e.backend.initSpeaker(); err != nil {
		streamer.Close()
		go e.emitLoadError(err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.released.Load() {
		streamer.Close()
		return
	}
	e.streamer = streamer
	e.format = format
	if e.pending > 0 {
		if err := streamer.Seek(e.clampSamples(format.SampleRate.N(e.pending))); err != nil {
			logger.Warn("[Audio] 预设进度失败", logger.ErrorField(err))
		}
	}
	e.startLocked()
	logger.Debug("[Audio] 媒体已加载",
		logger.String("trackId", e.track.ID),
		logger.Int("sampleRate", int(format.SampleRate)))
}

// startLocked builds the resample/ctrl/volume chain from the decoder's
// current position and hands it to the output.
func (e *beepEngine) startLocked() {
	resampled := beep.Resample(4, e.format.SampleRate, speakerRate, e.streamer)
	e.ctrl = &beep.Ctrl{Streamer: resampled, Paused: !e.playing}
	e.vol = &effects.Volume{
		Streamer: e.ctrl,
		Base:     2,
		Volume:   volumeToGain(e.volume),
		Silent:   e.muted || e.volume == 0,
	}
	e.drained.Store(false)
	done := beep.Callback(func() {
		e.drained.Store(true)
		if !e.released.Load() && e.events.OnEnd != nil {
			// 回调里会切歌，必须离开 speaker 线程
			go e.events.OnEnd()
		}
	})
	e.backend.play(beep.Seq(e.vol, done))
}

// restartLocked reattaches a drained stream, optionally rewinding first.
func (e *beepEngine) restartLocked(rewind bool) {
	if e.streamer == nil || !e.drained.Load() || e.released.Load() {
		return
	}
	if rewind {
		e.backend.lock.Lock()
		err := e.streamer.Seek(0)
		e.backend.lock.Unlock()
		if err != nil {
			if e.events.OnPlayError != nil {
				go e.events.OnPlayError(err)
			}
			return
		}
	}
	e.startLocked()
}

func (e *beepEngine) emitLoadError(err error) {
	if !e.released.Load() && e.events.OnLoadError != nil {
		e.events.OnLoadError(err)
	}
}

func (e *beepEngine) setPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = !paused
	if !paused && e.drained.Load() {
		// 已经播完，从头再来
		e.restartLocked(true)
		return
	}
	if e.ctrl != nil {
		e.backend.lock.Lock()
		e.ctrl.Paused = paused
		e.backend.lock.Unlock()
	}
}

func (e *beepEngine) Play()  { e.setPaused(false) }
func (e *beepEngine) Pause() { e.setPaused(true) }

func (e *beepEngine) Seek(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		e.pending = pos
		return
	}
	e.backend.lock.Lock()
	err := e.streamer.Seek(e.clampSamples(e.format.SampleRate.N(pos)))
	e.backend.lock.Unlock()
	if err != nil {
		if e.events.OnPlayError != nil {
			go e.events.OnPlayError(err)
		}
		return
	}
	e.restartLocked(false)
}

// clampSamples keeps a seek target inside the stream.
func (e *beepEngine) clampSamples(n int) int {
	if n < 0 {
		return 0
	}
	if l := e.streamer.Len(); l > 0 && n >= l {
		return l - 1
	}
	return n
}

func (e *beepEngine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return e.pending
	}
	e.backend.lock.Lock()
	pos := e.streamer.Position()
	e.backend.lock.Unlock()
	return e.format.SampleRate.D(pos)
}

func (e *beepEngine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = v
	e.applyVolumeLocked()
}

func (e *beepEngine) SetMuted(m bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = m
	e.applyVolumeLocked()
}

func (e *beepEngine) applyVolumeLocked() {
	if e.vol == nil {
		return
	}
	e.backend.lock.Lock()
	e.vol.Volume = volumeToGain(e.volume)
	e.vol.Silent = e.muted || e.volume == 0
	e.backend.lock.Unlock()
}

func (e *beepEngine) Stop() {
	e.cancel()
	e.setPaused(true)
}

// Unload detaches the stream from the mixer and closes the decoder.
func (e *beepEngine) Unload() {
	if e.released.Swap(true) {
		return
	}
	e.mu.Lock()
	streamer := e.streamer
	if e.ctrl != nil {
		e.backend.lock.Lock()
		e.ctrl.Streamer = nil
		e.backend.lock.Unlock()
	}
	e.streamer = nil
	e.ctrl = nil
	e.vol = nil
	e.mu.Unlock()

	e.cancel()
	if streamer != nil {
		streamer.Close()
	}
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
