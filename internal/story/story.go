// Package story tells generated bedtime stories: it asks a writer for a
// short story, turns it into speech and plays it.
package story

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"eduspeak/internal/audio"
	"eduspeak/internal/speech"
	"eduspeak/internal/speech/generate"
)

// FailureText replaces the story when none could be written.
const FailureText = "Oops! I couldn't think of a story right now. Try again!"

var (
	ErrBusy    = errors.New("a story is already being told")
	ErrNoStory = errors.New("no story to replay")
)

type Story struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	source audio.Source
}

type Config struct {
	Writer Writer
	Speech *speech.Service
	// OnStory is called with the new story once its text is ready, before
	// it is spoken.
	OnStory func(Story)
	Logger  *logrus.Entry
}

type Teller struct {
	writer  Writer
	speech  *speech.Service
	onStory func(Story)
	log     *logrus.Entry

	mu      sync.Mutex
	loading bool
	current *Story
}

func NewTeller(cfg Config) *Teller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.WithField("component", "story")
	}
	return &Teller{
		writer:  cfg.Writer,
		speech:  cfg.Speech,
		onStory: cfg.OnStory,
		log:     cfg.Logger,
	}
}

// NewStory writes a new story and tells it, blocking until it has been
// spoken. If no story can be written the returned story carries
// FailureText along with the error.
func (t *Teller) NewStory(ctx context.Context) (Story, error) {
	t.mu.Lock()
	if t.loading || t.speech.Player().Busy() {
		t.mu.Unlock()
		return Story{}, ErrBusy
	}
	t.loading = true
	t.mu.Unlock()

	story, err := t.prepare(ctx)

	t.mu.Lock()
	t.loading = false
	if err == nil {
		t.current = &story
	}
	t.mu.Unlock()

	if err != nil {
		return Story{Text: FailureText}, err
	}
	if t.onStory != nil {
		t.onStory(story)
	}
	return story, t.play(ctx, story)
}

func (t *Teller) prepare(ctx context.Context) (Story, error) {
	start := time.Now()
	text, err := t.writer.Write(ctx)
	if err != nil {
		t.log.WithError(err).Error("Failed to write story")
		return Story{}, err
	}

	story := Story{ID: uuid.NewString(), Text: text, CreatedAt: time.Now()}
	log := t.log.WithField("story", story.ID)

	src, err := t.speech.Resolve(ctx, "story:"+story.ID, text)
	if err != nil {
		var genErr *generate.GenerationError
		if !errors.As(err, &genErr) || ctx.Err() != nil {
			log.WithError(err).Error("Failed to prepare story audio")
			return Story{}, err
		}
		log.WithError(err).Warn("Story speech generation failed, using device speech")
		src = audio.TextToSpeak(text)
	}
	story.source = src

	log.WithField("elapsed", time.Since(start)).Debug("Story ready")
	return story, nil
}

// Replay tells the last story again.
func (t *Teller) Replay(ctx context.Context) error {
	t.mu.Lock()
	current := t.current
	if current == nil {
		t.mu.Unlock()
		return ErrNoStory
	}
	if t.loading || t.speech.Player().Busy() {
		t.mu.Unlock()
		return ErrBusy
	}
	t.mu.Unlock()

	return t.play(ctx, *current)
}

func (t *Teller) play(ctx context.Context, story Story) error {
	err := t.speech.Player().Play(ctx, story.source)
	if errors.Is(err, audio.ErrCancelled) {
		return nil
	}
	return err
}

// Current returns the last story written.
func (t *Teller) Current() (Story, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Story{}, false
	}
	return *t.current, true
}

func (t *Teller) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Teller) Pause() error  { return t.speech.Player().Pause() }
func (t *Teller) Resume() error { return t.speech.Player().Resume() }
func (t *Teller) Stop()         { t.speech.Player().Cancel() }

// Playing reports whether the story is audibly playing.
func (t *Teller) Playing() bool {
	return t.speech.Player().IsPlaying()
}
