// Package speech ties generation, caching and playback together: look the
// phrase up in the cache, generate it on a miss, then play it.
package speech

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"eduspeak/internal/audio"
	"eduspeak/internal/speech/cache"
	"eduspeak/internal/speech/generate"
)

type Config struct {
	Generator generate.Generator
	Cache     *cache.Cache
	Player    *audio.Player
	// Fallback speaks text on the device when remote generation fails.
	Fallback bool
	Logger   *logrus.Entry
}

// Service is shared by the activity controllers of one session.
type Service struct {
	gen      generate.Generator
	cache    *cache.Cache
	player   *audio.Player
	fallback bool
	log      *logrus.Entry

	group singleflight.Group
}

func New(cfg Config) *Service {
	if cfg.Cache == nil {
		cfg.Cache = cache.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.WithField("component", "speech")
	}
	return &Service{
		gen:      cfg.Generator,
		cache:    cfg.Cache,
		player:   cfg.Player,
		fallback: cfg.Fallback,
		log:      cfg.Logger,
	}
}

func (s *Service) Player() *audio.Player { return s.player }

func (s *Service) Cache() *cache.Cache { return s.cache }

// Cached reports whether audio for key is already available.
func (s *Service) Cached(key string) bool {
	return s.cache.Has(key)
}

// Fetch returns the payload for key, generating it from text on a cache
// miss. Concurrent fetches of the same key share one remote call. Failed
// generations are never cached.
func (s *Service) Fetch(ctx context.Context, key, text string) (string, error) {
	if payload, ok := s.cache.Get(key); ok {
		return payload, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		payload, err := s.gen.Generate(ctx, text)
		if err != nil {
			return "", err
		}
		// discard results that arrive after the requester went away
		if err := ctx.Err(); err != nil {
			return "", err
		}
		s.cache.Put(key, payload)
		return payload, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			// the caller that issued the shared request was cancelled, not us
			if res.Shared && ctx.Err() == nil && isCancellation(res.Err) {
				return s.Fetch(ctx, key, text)
			}
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Resolve returns the source to play for text: the generated audio, or the
// text itself for on-device synthesis when generation fails and fallback is
// enabled.
func (s *Service) Resolve(ctx context.Context, key, text string) (audio.Source, error) {
	payload, err := s.Fetch(ctx, key, text)
	if err == nil {
		return audio.EncodedAudio(payload), nil
	}

	var genErr *generate.GenerationError
	if s.fallback && errors.As(err, &genErr) && ctx.Err() == nil {
		s.log.WithError(err).WithField("key", key).Warn("Speech generation failed, using device speech")
		return audio.TextToSpeak(text), nil
	}
	return nil, err
}

// Say resolves text and plays it, blocking until playback ends.
func (s *Service) Say(ctx context.Context, key, text string) error {
	src, err := s.Resolve(ctx, key, text)
	if err != nil {
		return err
	}
	return s.player.Play(ctx, src)
}

// SpeakText plays text with on-device synthesis.
func (s *Service) SpeakText(ctx context.Context, text string) error {
	return s.player.Play(ctx, audio.TextToSpeak(text))
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
