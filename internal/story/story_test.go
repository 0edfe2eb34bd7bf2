package story

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"eduspeak/internal/audio"
	"eduspeak/internal/audio/audiotest"
	"eduspeak/internal/speech"
	"eduspeak/internal/speech/generate/generatetest"
	"eduspeak/internal/speech/synth"
)

type fakeWriter struct {
	text string
	err  error
}

func (w fakeWriter) Write(ctx context.Context) (string, error) {
	return w.text, w.err
}

type fixture struct {
	gen    *generatetest.Stub
	out    *audiotest.Output
	synth  *synth.MockEngine
	player *audio.Player
}

func newTeller(t *testing.T, w Writer, onStory func(Story)) (*Teller, *fixture) {
	t.Helper()
	f := &fixture{
		gen:   generatetest.NewStub(),
		out:   audiotest.NewOutput(),
		synth: audiotest.Synth(time.Millisecond),
	}
	f.player = audiotest.NewPlayer(f.out, f.synth)
	t.Cleanup(func() { f.player.Close() })

	svc := speech.New(speech.Config{Generator: f.gen, Player: f.player})
	return NewTeller(Config{Writer: w, Speech: svc, OnStory: onStory}), f
}

func TestNewStory_WritesSpeaksAndReplays(t *testing.T) {
	var announced []Story
	teller, f := newTeller(t, fakeWriter{text: "A duck went splash."}, func(s Story) {
		announced = append(announced, s)
	})

	story, err := teller.NewStory(context.Background())
	if err != nil {
		t.Fatalf("NewStory failed: %v", err)
	}
	if story.Text != "A duck went splash." || story.ID == "" {
		t.Errorf("story = %+v", story)
	}
	if len(announced) != 1 || announced[0].ID != story.ID {
		t.Errorf("OnStory calls = %v", announced)
	}
	if f.gen.Calls(story.Text) != 1 || len(f.out.Voices()) != 1 {
		t.Errorf("calls %d, voices %d", f.gen.Calls(story.Text), len(f.out.Voices()))
	}

	if err := teller.Replay(context.Background()); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if f.gen.Calls(story.Text) != 1 {
		t.Error("Replay generated the story audio again")
	}
	if len(f.out.Voices()) != 2 {
		t.Errorf("voices = %d, want 2", len(f.out.Voices()))
	}
}

func TestNewStory_WriterFailure(t *testing.T) {
	teller, f := newTeller(t, fakeWriter{err: errors.New("model overloaded")}, nil)

	story, err := teller.NewStory(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if story.Text != FailureText {
		t.Errorf("story text = %q", story.Text)
	}
	if f.gen.Total() != 0 {
		t.Error("speech generated for a failed story")
	}
	if err := teller.Replay(context.Background()); !errors.Is(err, ErrNoStory) {
		t.Errorf("Replay = %v, want ErrNoStory", err)
	}
	if teller.Loading() {
		t.Error("still loading after failure")
	}
}

func TestNewStory_SpeechFallback(t *testing.T) {
	teller, f := newTeller(t, fakeWriter{text: "The moon said hi."}, nil)
	f.gen.FailAll(errors.New("quota"))

	if _, err := teller.NewStory(context.Background()); err != nil {
		t.Fatalf("NewStory failed: %v", err)
	}
	spoken := f.synth.Spoken()
	if len(spoken) != 1 || spoken[0].Text != "The moon said hi." {
		t.Errorf("spoken = %+v", spoken)
	}
}

func TestNewStory_BusyWhilePlaying(t *testing.T) {
	teller, f := newTeller(t, fakeWriter{text: "Once upon a time."}, nil)
	f.out.Hold(true)

	done := make(chan error, 1)
	go func() {
		_, err := teller.NewStory(context.Background())
		done <- err
	}()

	var voice *audiotest.Voice
	select {
	case voice = <-f.out.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("story never started")
	}

	if _, err := teller.NewStory(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("NewStory while playing = %v, want ErrBusy", err)
	}
	if err := teller.Replay(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Replay while playing = %v, want ErrBusy", err)
	}
	if voice.Stopped() {
		t.Error("Replay interrupted the playing story")
	}

	if err := teller.Pause(); err != nil || !voice.Paused() {
		t.Errorf("Pause = %v, paused %v", err, voice.Paused())
	}
	if teller.Playing() {
		t.Error("Playing while paused")
	}
	if err := teller.Resume(); err != nil || voice.Paused() {
		t.Errorf("Resume = %v, paused %v", err, voice.Paused())
	}

	teller.Stop()
	if err := <-done; err != nil {
		t.Errorf("stopped story returned %v", err)
	}
	if !voice.Stopped() {
		t.Error("voice not stopped")
	}
}

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	prompt string
	resp   *genai.GenerateContentResponse
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, nil
}

func TestGeminiWriter(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{
			{Text: "Once upon a time "},
			{Text: "there was a kitten.\n"},
		}}}},
	}}
	w := newGeminiWriter(models, WriterConfig{})

	text, err := w.Write(context.Background())
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if text != "Once upon a time there was a kitten." {
		t.Errorf("text = %q", text)
	}
	if models.model != DefaultModel || models.prompt != DefaultPrompt {
		t.Errorf("model %q prompt %q", models.model, models.prompt)
	}
	if got := models.config.SystemInstruction.Parts[0].Text; got != DefaultInstruction {
		t.Errorf("instruction = %q", got)
	}

	models.resp = &genai.GenerateContentResponse{}
	if _, err := w.Write(context.Background()); err == nil {
		t.Error("expected an error for an empty response")
	}
}

func TestCannedWriter(t *testing.T) {
	w := NewCannedWriter([]string{"one", "two"})
	prev := ""
	for i := 0; i < 10; i++ {
		text, err := w.Write(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if text == prev {
			t.Errorf("same story twice in a row: %q", text)
		}
		prev = text
	}

	text, _ := NewCannedWriter(nil).Write(context.Background())
	if !strings.HasSuffix(text, "The end.") {
		t.Errorf("built-in story = %q", text)
	}
}
