package synth

import (
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// MockEngine simulates speech with a timer. It is used when no real
// synthesizer is installed and in tests.
type MockEngine struct {
	// WordDuration is how long each word takes to "speak".
	WordDuration time.Duration
	// Fail, when set, is reported through OnError instead of OnEnd.
	Fail error
	// Quiet suppresses the console line printed for each utterance.
	Quiet bool

	mu      sync.Mutex
	spoken  []Utterance
	current *mockUtterance
}

type mockUtterance struct {
	stop   chan struct{}
	paused bool
}

func NewMockEngine() *MockEngine {
	return &MockEngine{WordDuration: 300 * time.Millisecond}
}

func (m *MockEngine) Speak(u Utterance, ev Events) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return ErrBusy
	}
	m.spoken = append(m.spoken, u)

	if !m.Quiet {
		color.Yellow("🔊 %s", u.Text)
	}

	words := len(strings.Fields(u.Text))
	utt := &mockUtterance{stop: make(chan struct{})}
	m.current = utt
	duration := time.Duration(words) * m.WordDuration
	fail := m.Fail

	go func() {
		ev.start()
		select {
		case <-utt.stop:
			return
		case <-time.After(duration):
		}

		m.mu.Lock()
		if m.current != utt {
			m.mu.Unlock()
			return
		}
		m.current = nil
		m.mu.Unlock()

		if fail != nil {
			ev.fail(fail)
			return
		}
		ev.end()
	}()

	return nil
}

func (m *MockEngine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		close(m.current.stop)
		m.current = nil
	}
	return nil
}

func (m *MockEngine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.paused = true
	}
	return nil
}

func (m *MockEngine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.paused = false
	}
	return nil
}

func (m *MockEngine) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && !m.current.paused
}

func (m *MockEngine) Voices() ([]string, error) {
	return []string{"mock-voice"}, nil
}

// Spoken returns every utterance handed to Speak so far.
func (m *MockEngine) Spoken() []Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Utterance(nil), m.spoken...)
}
