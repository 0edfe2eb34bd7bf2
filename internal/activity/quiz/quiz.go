// Package quiz runs a multiple-choice quiz session: it asks each question
// aloud, checks answers, speaks feedback and keeps the score.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"eduspeak/internal/audio"
	"eduspeak/internal/domain/learning"
	questions "eduspeak/internal/domain/quiz"
	"eduspeak/internal/metrics"
	"eduspeak/internal/speech"
	"eduspeak/internal/speech/generate"
)

const (
	CorrectPhrase = "Correct!"
	RetryPhrase   = "Try again."

	DefaultAskDelay     = 200 * time.Millisecond
	DefaultCorrectDelay = 1500 * time.Millisecond
	DefaultRetryDelay   = 1000 * time.Millisecond
)

var (
	// ErrBusy rejects an answer while a question or feedback is playing,
	// or after the question was answered correctly.
	ErrBusy          = errors.New("quiz is busy")
	ErrUnknownOption = errors.New("not an option of this question")
	ErrDisabled      = errors.New("option already tried")
	ErrFinished      = errors.New("quiz is finished")
	ErrNoQuestions   = errors.New("not enough items for a quiz")
)

// Feedback is what the child is currently being told.
type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackIncorrect
)

func (f Feedback) String() string {
	switch f {
	case FeedbackCorrect:
		return "correct"
	case FeedbackIncorrect:
		return "incorrect"
	default:
		return "none"
	}
}

type Config struct {
	Items              []learning.Item
	QuestionCount      int
	OptionsPerQuestion int
	Rand               *rand.Rand
	Speech             *speech.Service

	AskDelay     time.Duration
	CorrectDelay time.Duration
	RetryDelay   time.Duration

	OnChange func()
	Logger   *logrus.Entry
}

// State is a snapshot of the session.
type State struct {
	Index    int
	Total    int
	Score    int
	Question questions.Question
	Disabled []string
	Feedback Feedback
	Selected string
	Asking   bool
	Finished bool
}

// Outcome is the result of one accepted answer.
type Outcome struct {
	Correct bool
	// Finished is set when the correct answer ended the last question.
	Finished bool
}

// Controller holds one quiz session. Questions are generated once in New.
type Controller struct {
	questions []questions.Question
	speech    *speech.Service
	config    Config
	onChange  func()
	log       *logrus.Entry

	mu            sync.Mutex
	index         int
	score         int
	disabled      map[string]bool
	feedback      Feedback
	selected      string
	answered      bool
	asking        bool
	finished      bool
	feedbackReady bool
	epoch         int
	cancel        context.CancelFunc
}

func New(cfg Config) (*Controller, error) {
	if cfg.Speech == nil {
		return nil, errors.New("quiz requires a speech service")
	}
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = questions.DefaultQuestionCount
	}
	if cfg.OptionsPerQuestion <= 0 {
		cfg.OptionsPerQuestion = questions.DefaultOptionsPerQuestion
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.WithField("component", "quiz")
	}

	qs := questions.Generate(cfg.Items, cfg.QuestionCount, cfg.OptionsPerQuestion, cfg.Rand)
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}

	cfg.Logger.WithFields(logrus.Fields{
		"questions": len(qs),
		"options":   len(qs[0].Options),
	}).Debug("Quiz created")

	return &Controller{
		questions: qs,
		speech:    cfg.Speech,
		config:    cfg,
		onChange:  cfg.OnChange,
		log:       cfg.Logger,
		disabled:  make(map[string]bool),
	}, nil
}

// Questions returns the generated question set.
func (c *Controller) Questions() []questions.Question {
	return append([]questions.Question(nil), c.questions...)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Index:    c.index,
		Total:    len(c.questions),
		Score:    c.score,
		Feedback: c.feedback,
		Selected: c.selected,
		Asking:   c.asking,
		Finished: c.finished,
	}
	if !c.finished {
		s.Question = c.questions[c.index]
	}
	for _, o := range s.Question.Options {
		if c.disabled[o.Name] {
			s.Disabled = append(s.Disabled, o.Name)
		}
	}
	return s
}

// FeedbackReady reports whether both feedback phrases were prefetched.
func (c *Controller) FeedbackReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedbackReady
}

// PrefetchFeedback generates the two feedback phrases in parallel.
func (c *Controller) PrefetchFeedback(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, phrase := range []string{CorrectPhrase, RetryPhrase} {
		phrase := phrase
		g.Go(func() error {
			_, err := c.speech.Fetch(gctx, phrase, phrase)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.log.WithError(err).Warn("Failed to prefetch feedback audio")
		return err
	}

	c.mu.Lock()
	c.feedbackReady = true
	c.mu.Unlock()
	return nil
}

// Ask waits the ask delay, then speaks the current question. Answers are
// rejected until it returns.
func (c *Controller) Ask(ctx context.Context) error {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return ErrFinished
	}
	if c.asking || c.answered || c.feedback != FeedbackNone {
		c.mu.Unlock()
		return ErrBusy
	}
	ctx, epoch, done := c.beginLocked(ctx)
	defer done()
	c.asking = true
	q := c.questions[c.index]
	c.mu.Unlock()
	c.notify()

	defer func() {
		c.mu.Lock()
		if c.epoch == epoch {
			c.asking = false
		}
		c.mu.Unlock()
		c.notify()
	}()

	if err := sleep(ctx, c.config.AskDelay); err != nil {
		return nil
	}
	return c.say(ctx, q.Prompt())
}

// Answer checks name against the current question. It speaks the feedback,
// waits the feedback delay and then moves on: to the next question after a
// correct answer, back to the same question after an incorrect one.
func (c *Controller) Answer(ctx context.Context, name string) (Outcome, error) {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return Outcome{}, ErrFinished
	}
	if c.asking || c.answered || c.feedback == FeedbackCorrect || c.speech.Player().Busy() {
		c.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	q := c.questions[c.index]
	if _, ok := q.Option(name); !ok {
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	if c.disabled[name] {
		c.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", ErrDisabled, name)
	}

	ctx, epoch, done := c.beginLocked(ctx)
	defer done()

	index := c.index
	correct := name == q.Correct.Name
	c.selected = name
	if correct {
		c.answered = true
		c.score++
		c.feedback = FeedbackCorrect
	} else {
		c.disabled[name] = true
		c.feedback = FeedbackIncorrect
	}
	c.mu.Unlock()
	c.notify()

	metrics.RecordAnswer(correct)
	c.log.WithFields(logrus.Fields{
		"question": index + 1,
		"answer":   name,
		"correct":  correct,
	}).Debug("Answer received")

	phrase, delay := RetryPhrase, c.config.RetryDelay
	if correct {
		phrase, delay = CorrectPhrase, c.config.CorrectDelay
	}
	if err := c.say(ctx, phrase); err != nil {
		c.log.WithError(err).Warn("Failed to play feedback")
	}
	_ = sleep(ctx, delay)

	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		c.notify()
	}()

	if c.epoch != epoch {
		return Outcome{Correct: correct}, nil
	}
	if !correct {
		// a newer answer owns the feedback now
		if c.selected == name {
			c.feedback = FeedbackNone
			c.selected = ""
		}
		return Outcome{}, nil
	}

	c.index++
	c.resetQuestionLocked()
	if c.index >= len(c.questions) {
		c.index = len(c.questions) - 1
		c.finished = true
		c.log.WithFields(logrus.Fields{
			"score": c.score,
			"total": len(c.questions),
		}).Info("Quiz finished")
	}
	return Outcome{Correct: true, Finished: c.finished}, nil
}

// Restart starts the same questions over: index, score and per-question
// state go back to their initial values.
func (c *Controller) Restart() {
	c.mu.Lock()
	cancel := c.cancel
	c.epoch++
	c.cancel = nil
	c.index = 0
	c.score = 0
	c.finished = false
	c.asking = false
	c.resetQuestionLocked()
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.speech.Player().Cancel()
	c.notify()
}

// Close stops any question or feedback in progress.
func (c *Controller) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.epoch++
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.speech.Player().Cancel()
}

func (c *Controller) resetQuestionLocked() {
	c.disabled = make(map[string]bool)
	c.feedback = FeedbackNone
	c.selected = ""
	c.answered = false
}

// beginLocked starts an operation that Restart can cancel.
func (c *Controller) beginLocked(ctx context.Context) (context.Context, int, func()) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	epoch := c.epoch
	return ctx, epoch, cancel
}

// say plays phrase from the cache or the generator, speaking it on the
// device when generation fails.
func (c *Controller) say(ctx context.Context, phrase string) error {
	src, err := c.speech.Resolve(ctx, phrase, phrase)
	if err != nil {
		var genErr *generate.GenerationError
		if !errors.As(err, &genErr) || ctx.Err() != nil {
			return err
		}
		c.log.WithError(err).WithField("phrase", phrase).Warn("Speech generation failed, using device speech")
		src = audio.TextToSpeak(phrase)
	}

	err = c.speech.Player().Play(ctx, src)
	if errors.Is(err, audio.ErrCancelled) {
		return nil
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
