// Package generatetest provides a scriptable generate.Generator for tests.
package generatetest

import (
	"context"
	"sync"

	"eduspeak/internal/audio"
	"eduspeak/internal/speech/generate"
)

// Stub answers every request with Payload, or fails with a
// *generate.GenerationError wrapping the configured error.
type Stub struct {
	Payload string

	mu    sync.Mutex
	err   error
	fail  map[string]error
	gate  chan struct{}
	calls map[string]int
	order []string
}

func NewStub() *Stub {
	return &Stub{
		Payload: audio.Encode([]int16{100, -100, 200, -200}),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (s *Stub) Name() string { return "stub" }

// FailAll makes every request fail with err. A nil err clears it.
func (s *Stub) FailAll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// FailText makes requests for text fail with err.
func (s *Stub) FailText(text string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[text] = err
}

// Block makes requests wait until Release or until their context ends.
func (s *Stub) Block() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
}

// Release lets blocked and future requests through.
func (s *Stub) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

func (s *Stub) Generate(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.calls[text]++
	s.order = append(s.order, text)
	gate := s.gate
	err := s.err
	if e, ok := s.fail[text]; ok {
		err = e
	}
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", &generate.GenerationError{Engine: s.Name(), Text: text, Err: ctx.Err()}
		}
	}
	if err != nil {
		return "", &generate.GenerationError{Engine: s.Name(), Text: text, Err: err}
	}
	return s.Payload, nil
}

// Calls returns how often text was requested.
func (s *Stub) Calls(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[text]
}

// Total returns the number of requests so far.
func (s *Stub) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Requests returns every requested text in order.
func (s *Stub) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
