//go:build !((linux && cgo) || windows || darwin)

package audio

import "Sonicbar/core/player"

// Available reports whether this build can drive a sound device.
// Sound output needs cgo on linux; playback falls back to the silent clock.
const Available = false

// NewBackend returns a silent backend when no sound device can be driven.
func NewBackend(fetcher *Fetcher) player.Backend {
	return NewClockBackend()
}
