package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is returned by Play when the playback was stopped by
	// Cancel, a newer Play call, or context cancellation.
	ErrCancelled = errors.New("playback cancelled")

	// ErrClosed is returned by Play after the player has been closed.
	ErrClosed = errors.New("player is closed")
)

// DecodeError reports a payload that cannot be turned into PCM frames.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode audio: %s: %v", e.Reason, e.Err)
	}
	return "decode audio: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PlaybackError reports a failure of the audio subsystem or of a payload
// handed to it.
type PlaybackError struct {
	Source string
	Err    error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of %s failed: %v", e.Source, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }
