// Package learning runs the flashcard activity for one category: selecting
// a card speaks its phrase, and audio for the visible cards is generated in
// the background ahead of time.
package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"eduspeak/internal/audio"
	domain "eduspeak/internal/domain/learning"
	"eduspeak/internal/metrics"
	"eduspeak/internal/speech"
)

var (
	// ErrBusy rejects a selection while another card is active.
	ErrBusy = errors.New("another card is active")
	// ErrUnknownItem rejects a name that is not among the visible cards.
	ErrUnknownItem = errors.New("no such card")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("activity is closed")
)

// Status is the state of one card.
type Status int

const (
	ItemIdle Status = iota
	ItemLoading
	ItemSpeaking
	ItemSelected
)

func (s Status) String() string {
	switch s {
	case ItemLoading:
		return "loading"
	case ItemSpeaking:
		return "speaking"
	case ItemSelected:
		return "selected"
	default:
		return "idle"
	}
}

type Config struct {
	Category domain.Category
	Age      domain.AgeGroup
	Speech   *speech.Service
	// PrefetchInterval spaces background generation requests. Zero means
	// no pacing.
	PrefetchInterval time.Duration
	// OnChange is called after every status change, without locks held.
	OnChange func()
	Logger   *logrus.Entry
}

// Controller is the flashcard activity of one category. At most one card
// is active at a time.
type Controller struct {
	category domain.Category
	speech   *speech.Service
	limiter  *rate.Limiter
	onChange func()
	log      *logrus.Entry

	mu       sync.Mutex
	age      domain.AgeGroup
	selected string
	status   Status
	cancel   context.CancelFunc
	closed   bool

	prefetchParent context.Context
	prefetchCancel context.CancelFunc
	prefetchDone   chan struct{}
}

func New(cfg Config) (*Controller, error) {
	if cfg.Speech == nil {
		return nil, errors.New("learning activity requires a speech service")
	}
	if err := cfg.Category.Validate(); err != nil {
		return nil, err
	}
	if cfg.Age != domain.AgeAll && !cfg.Category.HasAgeFilter {
		return nil, fmt.Errorf("category %s has no age filter", cfg.Category.ID)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.WithField("component", "learning")
	}

	limit := rate.Inf
	if cfg.PrefetchInterval > 0 {
		limit = rate.Every(cfg.PrefetchInterval)
	}

	return &Controller{
		category: cfg.Category,
		speech:   cfg.Speech,
		limiter:  rate.NewLimiter(limit, 1),
		onChange: cfg.OnChange,
		log:      cfg.Logger.WithField("category", cfg.Category.ID),
		age:      cfg.Age,
	}, nil
}

func (c *Controller) Category() domain.Category {
	return c.category
}

// Items returns the cards visible under the current age filter.
func (c *Controller) Items() []domain.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category.Filter(c.age)
}

func (c *Controller) Age() domain.AgeGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.age
}

// SetAgeFilter changes the visible cards. A running prefetch is restarted
// for the new set.
func (c *Controller) SetAgeFilter(age domain.AgeGroup) error {
	if age != domain.AgeAll && !c.category.HasAgeFilter {
		return fmt.Errorf("category %s has no age filter", c.category.ID)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.age == age {
		c.mu.Unlock()
		return nil
	}
	c.age = age
	parent := c.prefetchParent
	c.mu.Unlock()

	c.log.WithField("age", age).Debug("Age filter changed")
	if parent != nil {
		c.StartPrefetch(parent)
	}
	c.notify()
	return nil
}

// Status returns the state of the card called name.
func (c *Controller) Status(name string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name != c.selected {
		return ItemIdle
	}
	return c.status
}

// Selected returns the active card, if any.
func (c *Controller) Selected() (string, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.status
}

// Select speaks the card called name and blocks until it has been spoken.
// The card stays selected until Dismiss. Failures clear the selection.
func (c *Controller) Select(ctx context.Context, name string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.selected != "" || c.speech.Player().Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	item, ok := c.visibleLocked(name)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.selected = name
	c.status = ItemLoading
	c.cancel = cancel
	c.mu.Unlock()
	c.notify()

	log := c.log.WithField("item", name)
	text := domain.Phrase(c.category.ID, item)

	src, err := c.speech.Resolve(ctx, item.Name, text)
	if err != nil {
		c.reset(name)
		if ctx.Err() != nil {
			return nil
		}
		log.WithError(err).Error("Failed to get audio for card")
		return err
	}

	if !c.advance(name, ItemLoading, ItemSpeaking) {
		return nil
	}

	if err := c.speech.Player().Play(ctx, src); err != nil {
		c.reset(name)
		if errors.Is(err, audio.ErrCancelled) {
			return nil
		}
		log.WithError(err).Error("Failed to play card")
		return err
	}

	c.advance(name, ItemSpeaking, ItemSelected)
	return nil
}

// Dismiss closes the active card and stops its audio.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.selected == "" {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.selected = ""
	c.status = ItemIdle
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.speech.Player().Cancel()
	c.notify()
}

// advance moves name from one status to the next if it is still selected.
func (c *Controller) advance(name string, from, to Status) bool {
	c.mu.Lock()
	ok := c.selected == name && c.status == from
	if ok {
		c.status = to
	}
	c.mu.Unlock()
	if ok {
		c.notify()
	}
	return ok
}

func (c *Controller) reset(name string) {
	c.mu.Lock()
	ok := c.selected == name
	if ok {
		c.selected = ""
		c.status = ItemIdle
		c.cancel = nil
	}
	c.mu.Unlock()
	if ok {
		c.notify()
	}
}

func (c *Controller) visibleLocked(name string) (domain.Item, bool) {
	for _, item := range c.category.Filter(c.age) {
		if item.Name == name {
			return item, true
		}
	}
	return domain.Item{}, false
}

// StartPrefetch runs Prefetch in the background. It replaces any prefetch
// already running.
func (c *Controller) StartPrefetch(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prevCancel, prevDone := c.prefetchCancel, c.prefetchDone
	pctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.prefetchParent = ctx
	c.prefetchCancel = cancel
	c.prefetchDone = done
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	go func() {
		defer close(done)
		n := c.Prefetch(pctx)
		c.log.WithField("generated", n).Debug("Prefetch finished")
	}()
}

// Prefetch generates audio for the visible cards, one at a time, and returns
// how many clips it generated once done or when ctx ends.
func (c *Controller) Prefetch(ctx context.Context) int {
	generated := 0
	for _, item := range c.Items() {
		if ctx.Err() != nil {
			return generated
		}
		if c.speech.Cached(item.Name) {
			continue
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return generated
		}

		_, err := c.speech.Fetch(ctx, item.Name, domain.Phrase(c.category.ID, item))
		if err != nil {
			if ctx.Err() != nil {
				return generated
			}
			c.log.WithError(err).WithField("item", item.Name).Warn("Prefetch failed")
			continue
		}
		generated++
		metrics.RecordPrefetch()
	}
	return generated
}

func (c *Controller) stopPrefetch() {
	c.mu.Lock()
	cancel, done := c.prefetchCancel, c.prefetchDone
	c.prefetchCancel, c.prefetchDone = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops the prefetch and any active card.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.prefetchParent = nil
	c.mu.Unlock()

	c.stopPrefetch()
	c.Dismiss()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
