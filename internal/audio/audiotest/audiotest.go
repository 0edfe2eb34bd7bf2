// Package audiotest provides an in-memory audio output for tests of code
// built on audio.Player.
package audiotest

import (
	"sync"
	"time"

	"eduspeak/internal/audio"
	"eduspeak/internal/speech/synth"
)

// Output is an audio.Output that plays nothing. By default every voice
// finishes immediately; with Hold set, voices run until Finish is called.
type Output struct {
	mu     sync.Mutex
	hold   bool
	voices []*Voice
	closed int

	// Started receives every voice as it starts.
	Started chan *Voice
}

func NewOutput() *Output {
	return &Output{Started: make(chan *Voice, 64)}
}

// Hold makes later voices play until they are finished by hand.
func (o *Output) Hold(hold bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hold = hold
}

// Factory returns an OutputFactory that always opens o.
func (o *Output) Factory() audio.OutputFactory {
	return func(audio.Format) (audio.Output, error) { return o, nil }
}

func (o *Output) Start(buf *audio.Buffer, done func()) (audio.Voice, error) {
	o.mu.Lock()
	v := &Voice{Frames: buf.Frames(), done: done}
	o.voices = append(o.voices, v)
	hold := o.hold
	o.mu.Unlock()

	select {
	case o.Started <- v:
	default:
	}
	if !hold {
		go v.Finish()
	}
	return v, nil
}

func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed++
	return nil
}

// Voices returns every voice started so far.
func (o *Output) Voices() []*Voice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Voice(nil), o.voices...)
}

// Closed reports how often Close was called.
func (o *Output) Closed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Voice is one fake playback.
type Voice struct {
	Frames int

	mu       sync.Mutex
	done     func()
	stopped  bool
	finished bool
	paused   bool
}

// Finish ends the voice as if the buffer had played out.
func (v *Voice) Finish() {
	v.mu.Lock()
	if v.stopped || v.finished {
		v.mu.Unlock()
		return
	}
	v.finished = true
	done := v.done
	v.mu.Unlock()
	done()
}

func (v *Voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped = true
}

func (v *Voice) SetPaused(paused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = paused
}

func (v *Voice) Stopped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}

func (v *Voice) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

// Synth returns a silent mock synthesizer whose utterances last
// wordDuration per word.
func Synth(wordDuration time.Duration) *synth.MockEngine {
	m := synth.NewMockEngine()
	m.Quiet = true
	m.WordDuration = wordDuration
	return m
}

// NewPlayer returns a player wired to out and s.
func NewPlayer(out *Output, s synth.Engine) *audio.Player {
	return audio.NewPlayer(audio.PlayerConfig{
		Format: audio.SpeechFormat,
		Output: out.Factory(),
		Synth:  s,
	})
}

// WaitFor polls cond until it holds or the deadline passes.
func WaitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
