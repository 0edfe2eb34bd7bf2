// Package synth drives the platform's on-device speech synthesis.
package synth

import "errors"

// ErrBusy is returned by Speak while another utterance is still speaking.
var ErrBusy = errors.New("synthesizer is already speaking")

// Config selects and tunes an Engine.
type Config struct {
	Type   string
	Voice  string
	Volume float64
}

// Utterance is one piece of text plus its delivery parameters.
type Utterance struct {
	Text   string
	Locale string
	Rate   float64
	Pitch  float64
}

// Events are the lifecycle callbacks of one utterance. They are invoked from
// the engine's goroutine. A stopped utterance fires no further events.
type Events struct {
	OnStart func()
	OnEnd   func()
	OnError func(error)
}

func (ev Events) start() {
	if ev.OnStart != nil {
		ev.OnStart()
	}
}

func (ev Events) end() {
	if ev.OnEnd != nil {
		ev.OnEnd()
	}
}

func (ev Events) fail(err error) {
	if ev.OnError != nil {
		ev.OnError(err)
	}
}

// Engine is an on-device speech synthesizer.
type Engine interface {
	// Speak hands the utterance to the synthesizer and returns without
	// waiting for it to finish.
	Speak(u Utterance, ev Events) error
	Stop() error
	Pause() error
	Resume() error
	IsSpeaking() bool
	Voices() ([]string, error)
}
