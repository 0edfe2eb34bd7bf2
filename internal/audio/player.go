package audio

import (
	"context"
	"errors"
	"sync"

	"eduspeak/internal/metrics"
	"eduspeak/internal/speech/synth"

	"github.com/sirupsen/logrus"
)

// Delivery parameters for on-device speech: normal rate, slightly raised
// pitch for a cheerful tone.
const (
	SpeechLocale = "en-US"
	SpeechRate   = 1.0
	SpeechPitch  = 1.2
)

// PlayerConfig wires a Player to its devices.
type PlayerConfig struct {
	Format Format
	// Output opens the audio device on first use of EncodedAudio.
	Output OutputFactory
	// Synth speaks TextToSpeak sources.
	Synth synth.Engine
	// OnStateChange is called with the player lock held; it must not call
	// back into the Player.
	OnStateChange func(State)
	Logger        *logrus.Entry
}

// Player plays one source at a time. Starting a new playback cancels the
// previous one before the new one begins.
type Player struct {
	format     Format
	openOutput OutputFactory
	synth      synth.Engine
	onState    func(State)
	log        *logrus.Entry

	mu     sync.Mutex
	state  State
	output Output
	active *playback
	closed bool
}

// playback is the ownership token of one in-flight Play call.
type playback struct {
	source string
	voice  Voice
	speech bool
	done   chan error
	once   sync.Once
}

func (pb *playback) finish(err error) {
	pb.once.Do(func() { pb.done <- err })
}

func NewPlayer(cfg PlayerConfig) *Player {
	if cfg.Format.SampleRate == 0 {
		cfg.Format = SpeechFormat
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.WithField("component", "player")
	}
	return &Player{
		format:     cfg.Format,
		openOutput: cfg.Output,
		synth:      cfg.Synth,
		onState:    cfg.OnStateChange,
		log:        cfg.Logger,
	}
}

// Play plays src and blocks until it ends. It returns ErrCancelled when the
// playback is stopped by Cancel, by a newer Play, or by ctx.
func (p *Player) Play(ctx context.Context, src Source) error {
	if src == nil {
		return errors.New("nil audio source")
	}

	pb := &playback{source: src.kind(), done: make(chan error, 1)}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	stopPrevious := p.detachLocked()
	p.active = pb
	p.setStateLocked(StateStarting)
	p.mu.Unlock()

	stopPrevious()

	var err error
	switch s := src.(type) {
	case EncodedAudio:
		err = p.startEncoded(pb, s)
	case TextToSpeak:
		err = p.startSpeech(pb, s)
	}
	if err != nil {
		p.complete(pb, err)
		err = <-pb.done
		p.record(pb, err)
		return err
	}

	select {
	case err = <-pb.done:
	case <-ctx.Done():
		p.cancelPlayback(pb)
		err = <-pb.done
	}
	p.record(pb, err)
	return err
}

func (p *Player) startEncoded(pb *playback, payload EncodedAudio) error {
	buf, err := Decode(string(payload), p.format)
	if err != nil {
		return &PlaybackError{Source: pb.source, Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active != pb {
		return ErrCancelled
	}

	out, err := p.outputLocked()
	if err != nil {
		return &PlaybackError{Source: pb.source, Err: err}
	}

	voice, err := out.Start(buf, func() { go p.complete(pb, nil) })
	if err != nil {
		return &PlaybackError{Source: pb.source, Err: err}
	}
	pb.voice = voice
	p.setStateLocked(StatePlaying)

	p.log.WithField("duration", buf.Duration()).Debug("Playing generated audio")
	return nil
}

func (p *Player) startSpeech(pb *playback, text TextToSpeak) error {
	if p.synth == nil {
		return &PlaybackError{Source: pb.source, Err: errors.New("no speech synthesizer configured")}
	}

	p.mu.Lock()
	if p.active != pb {
		p.mu.Unlock()
		return ErrCancelled
	}
	pb.speech = true
	p.mu.Unlock()

	err := p.synth.Speak(synth.Utterance{
		Text:   string(text),
		Locale: SpeechLocale,
		Rate:   SpeechRate,
		Pitch:  SpeechPitch,
	}, synth.Events{
		OnStart: func() {
			p.mu.Lock()
			if p.active == pb && p.state == StateStarting {
				p.setStateLocked(StatePlaying)
			}
			p.mu.Unlock()
		},
		OnEnd: func() { go p.complete(pb, nil) },
		OnError: func(err error) {
			go p.complete(pb, &PlaybackError{Source: pb.source, Err: err})
		},
	})
	if err != nil {
		return &PlaybackError{Source: pb.source, Err: err}
	}

	// superseded while handing off
	p.mu.Lock()
	superseded := p.active != pb
	p.mu.Unlock()
	if superseded {
		_ = p.synth.Stop()
		return ErrCancelled
	}
	return nil
}

// complete ends pb with err if it is still the active playback.
func (p *Player) complete(pb *playback, err error) {
	p.mu.Lock()
	if p.active == pb {
		p.active = nil
		p.setStateLocked(StateIdle)
	}
	p.mu.Unlock()
	pb.finish(err)
}

// Cancel stops whatever is playing. It is a no-op when idle.
func (p *Player) Cancel() {
	p.mu.Lock()
	stop := p.detachLocked()
	p.mu.Unlock()
	stop()
}

func (p *Player) cancelPlayback(pb *playback) {
	p.mu.Lock()
	if p.active != pb {
		p.mu.Unlock()
		return
	}
	stop := p.detachLocked()
	p.mu.Unlock()
	stop()
}

// detachLocked releases the active playback and returns the function that
// stops its device handle.
func (p *Player) detachLocked() func() {
	pb := p.active
	if pb == nil {
		return func() {}
	}
	p.active = nil
	p.setStateLocked(StateIdle)
	pb.finish(ErrCancelled)

	voice, speech := pb.voice, pb.speech
	return func() {
		if voice != nil {
			voice.Stop()
		}
		if speech {
			if err := p.synth.Stop(); err != nil {
				p.log.WithError(err).Warn("Failed to stop speech synthesis")
			}
		}
	}
}

// Pause suspends the active playback.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pb := p.active
	if pb == nil || p.state != StatePlaying {
		return nil
	}
	if pb.voice != nil {
		pb.voice.SetPaused(true)
	} else if pb.speech {
		if err := p.synth.Pause(); err != nil {
			return err
		}
	}
	p.setStateLocked(StatePaused)
	return nil
}

// Resume continues a paused playback.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pb := p.active
	if pb == nil || p.state != StatePaused {
		return nil
	}
	if pb.voice != nil {
		pb.voice.SetPaused(false)
	} else if pb.speech {
		if err := p.synth.Resume(); err != nil {
			return err
		}
	}
	p.setStateLocked(StatePlaying)
	return nil
}

// Close cancels playback and releases the output device. It is safe to call
// more than once.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	stop := p.detachLocked()
	out := p.output
	p.output = nil
	p.mu.Unlock()

	stop()
	if out != nil {
		return out.Close()
	}
	return nil
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPlaying reports whether audio is audibly playing right now.
func (p *Player) IsPlaying() bool {
	return p.State() == StatePlaying
}

// Busy reports whether any playback is in flight, including one that is
// starting or paused.
func (p *Player) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

func (p *Player) outputLocked() (Output, error) {
	if p.output != nil {
		return p.output, nil
	}
	if p.openOutput == nil {
		return nil, errors.New("no audio output configured")
	}
	out, err := p.openOutput(p.format)
	if err != nil {
		return nil, err
	}
	p.output = out
	return out, nil
}

func (p *Player) setStateLocked(s State) {
	if p.state == s {
		return
	}
	p.state = s
	if p.onState != nil {
		p.onState(s)
	}
}

func (p *Player) record(pb *playback, err error) {
	metrics.RecordPlayback(pb.source, err)
	if err != nil && !errors.Is(err, ErrCancelled) {
		p.log.WithError(err).WithField("source", pb.source).Warn("Playback failed")
	}
}
