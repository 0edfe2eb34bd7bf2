package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eduspeak/internal/speech/synth"
)

// fakeOutput records voices and lets tests finish them by hand.
type fakeOutput struct {
	mu       sync.Mutex
	voices   []*fakeVoice
	started  chan *fakeVoice
	closed   int
	autoDone bool
}

type fakeVoice struct {
	mu      sync.Mutex
	done    func()
	stopped bool
	paused  bool
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{started: make(chan *fakeVoice, 16)}
}

func (o *fakeOutput) Start(buf *Buffer, done func()) (Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := &fakeVoice{done: done}
	o.voices = append(o.voices, v)
	if o.autoDone {
		go done()
	}
	o.started <- v
	return v, nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed++
	return nil
}

func (o *fakeOutput) setAutoDone(auto bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.autoDone = auto
}

func (o *fakeOutput) closeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped = true
}

func (v *fakeVoice) SetPaused(paused bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = paused
}

func (v *fakeVoice) isStopped() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}

func (v *fakeVoice) finish() {
	v.done()
}

func newTestPlayer(out *fakeOutput, engine synth.Engine) (*Player, *int) {
	opened := 0
	p := NewPlayer(PlayerConfig{
		Format: SpeechFormat,
		Output: func(Format) (Output, error) {
			opened++
			return out, nil
		},
		Synth: engine,
	})
	return p, &opened
}

func quietMock(wordDuration time.Duration) *synth.MockEngine {
	m := synth.NewMockEngine()
	m.Quiet = true
	m.WordDuration = wordDuration
	return m
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

var testPayload = EncodedAudio(Encode(make([]int16, 240)))

func TestPlayer_EncodedAudioLifecycle(t *testing.T) {
	out := newFakeOutput()
	p, opened := newTestPlayer(out, nil)
	defer p.Close()

	result := make(chan error, 1)
	go func() { result <- p.Play(context.Background(), testPayload) }()

	voice := <-out.started
	waitFor(t, p.IsPlaying)

	voice.finish()
	if err := <-result; err != nil {
		t.Fatalf("Play returned %v", err)
	}
	if p.IsPlaying() || p.State() != StateIdle {
		t.Errorf("state after completion = %v, want idle", p.State())
	}

	// the output is created lazily and reused
	out.setAutoDone(true)
	if err := p.Play(context.Background(), testPayload); err != nil {
		t.Fatalf("second Play returned %v", err)
	}
	if *opened != 1 {
		t.Errorf("output opened %d times, want 1", *opened)
	}
}

func TestPlayer_DecodeFailure(t *testing.T) {
	out := newFakeOutput()
	var states []State
	p := NewPlayer(PlayerConfig{
		Output:        func(Format) (Output, error) { return out, nil },
		OnStateChange: func(s State) { states = append(states, s) },
	})
	defer p.Close()

	err := p.Play(context.Background(), EncodedAudio("%%%"))

	var playbackErr *PlaybackError
	if !errors.As(err, &playbackErr) {
		t.Fatalf("expected PlaybackError, got %v", err)
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("expected wrapped DecodeError, got %v", err)
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
	if len(states) != 2 || states[0] != StateStarting || states[1] != StateIdle {
		t.Errorf("state transitions = %v, want [starting idle]", states)
	}
	if len(out.voices) != 0 {
		t.Error("a voice was started for an undecodable payload")
	}
}

func TestPlayer_SecondPlayCancelsFirst(t *testing.T) {
	out := newFakeOutput()
	p, _ := newTestPlayer(out, nil)
	defer p.Close()

	first := make(chan error, 1)
	go func() { first <- p.Play(context.Background(), testPayload) }()
	firstVoice := <-out.started

	second := make(chan error, 1)
	go func() { second <- p.Play(context.Background(), testPayload) }()
	secondVoice := <-out.started

	if err := <-first; !errors.Is(err, ErrCancelled) {
		t.Errorf("first Play returned %v, want ErrCancelled", err)
	}
	if !firstVoice.isStopped() {
		t.Error("first voice was not stopped before the second started")
	}
	if secondVoice.isStopped() {
		t.Error("second voice was stopped")
	}

	// a late completion of the first voice must not end the second playback
	firstVoice.finish()
	time.Sleep(10 * time.Millisecond)
	if !p.IsPlaying() {
		t.Error("stale completion ended the active playback")
	}

	secondVoice.finish()
	if err := <-second; err != nil {
		t.Errorf("second Play returned %v", err)
	}
}

func TestPlayer_CancelIsIdempotent(t *testing.T) {
	out := newFakeOutput()
	p, _ := newTestPlayer(out, nil)
	defer p.Close()

	p.Cancel()
	p.Cancel()

	result := make(chan error, 1)
	go func() { result <- p.Play(context.Background(), testPayload) }()
	voice := <-out.started

	p.Cancel()
	p.Cancel()

	if err := <-result; !errors.Is(err, ErrCancelled) {
		t.Errorf("Play returned %v, want ErrCancelled", err)
	}
	if !voice.isStopped() {
		t.Error("voice not stopped by Cancel")
	}
	if p.Busy() {
		t.Error("player still busy after Cancel")
	}
}

func TestPlayer_ContextCancellation(t *testing.T) {
	out := newFakeOutput()
	p, _ := newTestPlayer(out, nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- p.Play(ctx, testPayload) }()
	voice := <-out.started

	cancel()
	if err := <-result; !errors.Is(err, ErrCancelled) {
		t.Errorf("Play returned %v, want ErrCancelled", err)
	}
	if !voice.isStopped() {
		t.Error("voice not stopped on context cancellation")
	}
}

func TestPlayer_CloseReleasesOutputOnce(t *testing.T) {
	out := newFakeOutput()
	p, _ := newTestPlayer(out, nil)

	result := make(chan error, 1)
	go func() { result <- p.Play(context.Background(), testPayload) }()
	<-out.started

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := <-result; !errors.Is(err, ErrCancelled) {
		t.Errorf("Play returned %v, want ErrCancelled", err)
	}
	if out.closeCount() != 1 {
		t.Errorf("output closed %d times, want 1", out.closeCount())
	}
	if err := p.Play(context.Background(), testPayload); !errors.Is(err, ErrClosed) {
		t.Errorf("Play after Close returned %v, want ErrClosed", err)
	}
}

func TestPlayer_CloseWithoutOutput(t *testing.T) {
	p := NewPlayer(PlayerConfig{})
	if err := p.Close(); err != nil {
		t.Errorf("Close of an unused player failed: %v", err)
	}
}

func TestPlayer_TextToSpeak(t *testing.T) {
	engine := quietMock(0)
	p, opened := newTestPlayer(newFakeOutput(), engine)
	defer p.Close()

	if err := p.Play(context.Background(), TextToSpeak("Hello there")); err != nil {
		t.Fatalf("Play returned %v", err)
	}

	spoken := engine.Spoken()
	if len(spoken) != 1 {
		t.Fatalf("spoke %d utterances, want 1", len(spoken))
	}
	u := spoken[0]
	if u.Text != "Hello there" || u.Locale != "en-US" || u.Rate != 1.0 || u.Pitch != 1.2 {
		t.Errorf("utterance = %+v", u)
	}
	if *opened != 0 {
		t.Error("speech opened the audio output")
	}
	if p.IsPlaying() {
		t.Error("still playing after speech ended")
	}
}

func TestPlayer_TextToSpeakError(t *testing.T) {
	engine := quietMock(0)
	engine.Fail = errors.New("audio device busy")
	p, _ := newTestPlayer(newFakeOutput(), engine)
	defer p.Close()

	err := p.Play(context.Background(), TextToSpeak("Hi"))
	var playbackErr *PlaybackError
	if !errors.As(err, &playbackErr) {
		t.Fatalf("expected PlaybackError, got %v", err)
	}
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle", p.State())
	}
}

func TestPlayer_SpeechInterruptedByEncoded(t *testing.T) {
	engine := quietMock(time.Hour)
	out := newFakeOutput()
	p, _ := newTestPlayer(out, engine)
	defer p.Close()

	speech := make(chan error, 1)
	go func() { speech <- p.Play(context.Background(), TextToSpeak("a very long sentence")) }()
	waitFor(t, p.IsPlaying)

	out.setAutoDone(true)
	if err := p.Play(context.Background(), testPayload); err != nil {
		t.Fatalf("encoded Play returned %v", err)
	}
	if err := <-speech; !errors.Is(err, ErrCancelled) {
		t.Errorf("speech Play returned %v, want ErrCancelled", err)
	}
	if engine.IsSpeaking() {
		t.Error("synthesizer still speaking after being superseded")
	}
}

func TestPlayer_PauseResume(t *testing.T) {
	out := newFakeOutput()
	p, _ := newTestPlayer(out, nil)
	defer p.Close()

	// nothing to pause
	if err := p.Pause(); err != nil {
		t.Fatalf("Pause on idle player failed: %v", err)
	}

	result := make(chan error, 1)
	go func() { result <- p.Play(context.Background(), testPayload) }()
	voice := <-out.started
	waitFor(t, p.IsPlaying)

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if p.State() != StatePaused || p.IsPlaying() || !p.Busy() {
		t.Errorf("after Pause: state=%v playing=%v busy=%v", p.State(), p.IsPlaying(), p.Busy())
	}
	voice.mu.Lock()
	paused := voice.paused
	voice.mu.Unlock()
	if !paused {
		t.Error("voice not paused")
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !p.IsPlaying() {
		t.Error("not playing after Resume")
	}

	voice.finish()
	if err := <-result; err != nil {
		t.Errorf("Play returned %v", err)
	}
}
