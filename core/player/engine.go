package player

import (
	"time"

	"Sonicbar/model"
)

// Engine is a live audio handle bound to exactly one track.
//
// Engine methods are fire-and-forget from the Player's point of view and are
// called with the Player lock held. Implementations must deliver EngineEvents
// asynchronously, never from inside an Engine method call.
type Engine interface {
	Play()
	Pause()
	Seek(pos time.Duration)
	// Position reports the live playback position.
	Position() time.Duration
	SetVolume(v float64)
	SetMuted(muted bool)
	// Stop halts output. Unload releases the underlying media resource;
	// the handle is unusable afterwards.
	Stop()
	Unload()
}

// EngineEvents are the completion callbacks an Engine reports through.
type EngineEvents struct {
	OnEnd       func()
	OnLoadError func(err error)
	OnPlayError func(err error)
}

// EngineOptions carries the state a new Engine starts with.
type EngineOptions struct {
	Volume float64
	Muted  bool
	Events EngineEvents
}

// Backend creates engines. A synchronous error from Open is treated as a
// media load error.
type Backend interface {
	Open(track model.Track, opts EngineOptions) (Engine, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(track model.Track, opts EngineOptions) (Engine, error)

// Open calls f.
func (f BackendFunc) Open(track model.Track, opts EngineOptions) (Engine, error) {
	return f(track, opts)
}
