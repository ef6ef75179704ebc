package player

import (
	"errors"
	"fmt"
)

var (
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrNoSession       = errors.New("no track loaded")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrClosed          = errors.New("player closed")
)

// MediaErrorKind distinguishes load failures from playback failures.
type MediaErrorKind string

const (
	MediaLoadError MediaErrorKind = "load"
	MediaPlayError MediaErrorKind = "play"
)

// MediaError is recorded when the engine fails to load or play a track.
// It is logged and exposed in snapshots; the player does not retry.
type MediaError struct {
	Kind    MediaErrorKind
	TrackID string
	Err     error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media %s error (track %s): %v", e.Kind, e.TrackID, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}
