package generate

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"eduspeak/internal/audio"
)

// MockGenerator renders a short tone per text instead of calling a service.
// The pitch is derived from the text so different phrases sound different.
type MockGenerator struct {
	mu    sync.Mutex
	calls map[string]int
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{calls: make(map[string]int)}
}

func (m *MockGenerator) Name() string {
	return EngineTypeMock.String()
}

func (m *MockGenerator) Generate(ctx context.Context, text string) (string, error) {
	return call(ctx, m.Name(), text, m.generate)
}

func (m *MockGenerator) generate(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.calls[text]++
	m.mu.Unlock()

	return audio.Encode(tone(text)), nil
}

// Calls returns how often text was generated.
func (m *MockGenerator) Calls(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

// tone renders 60 ms of sine per character, capped at two seconds.
func tone(text string) []int16 {
	h := fnv.New32a()
	h.Write([]byte(text))
	freq := 300 + float64(h.Sum32()%500)

	rate := audio.SpeechFormat.SampleRate
	frames := len([]rune(text)) * rate * 60 / 1000
	if limit := 2 * rate; frames > limit {
		frames = limit
	}

	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return samples
}
