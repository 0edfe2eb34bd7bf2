package story

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultPrompt      = "Tell me a short, happy story for a toddler. It should be simple and cheerful, about 2-3 short paragraphs."
	DefaultInstruction = "You are a storyteller for kids under 5 years old."
)

// Writer invents story text.
type Writer interface {
	Write(ctx context.Context) (string, error)
}

type WriterConfig struct {
	APIKey      string
	Model       string
	Prompt      string
	Instruction string
}

// NewWriter returns a Gemini writer when an API key is configured and a
// writer of built-in stories otherwise.
func NewWriter(ctx context.Context, config WriterConfig) (Writer, error) {
	if config.APIKey == "" {
		return NewCannedWriter(nil), nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newGeminiWriter(client.Models, config), nil
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiWriter asks a Gemini text model for a story.
type GeminiWriter struct {
	models      contentGenerator
	model       string
	prompt      string
	instruction string
}

func newGeminiWriter(models contentGenerator, config WriterConfig) *GeminiWriter {
	w := &GeminiWriter{
		models:      models,
		model:       config.Model,
		prompt:      config.Prompt,
		instruction: config.Instruction,
	}
	if w.model == "" {
		w.model = DefaultModel
	}
	if w.prompt == "" {
		w.prompt = DefaultPrompt
	}
	if w.instruction == "" {
		w.instruction = DefaultInstruction
	}
	return w
}

func (w *GeminiWriter) Write(ctx context.Context) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: w.instruction}}},
	}

	resp, err := w.models.GenerateContent(ctx, w.model, genai.Text(w.prompt), cfg)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("story model returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("story model returned no text")
	}
	return text, nil
}

var builtinStories = []string{
	"Once upon a time, a little yellow duck named Dot found a big puddle. Splash, splash! Dot jumped in and laughed and laughed.\n\nDot's friend Frog hopped over. Ribbit! They splashed together until the sun came out and dried them warm.\n\nThen Dot and Frog had a nap under a leafy tree. The end.",
	"Teddy the bear had a bright red ball. He rolled it to Bunny. Bunny rolled it back. Roll, roll, roll!\n\nThe ball bounced over a flower and landed in a basket of apples. Teddy and Bunny shared a crunchy apple.\n\nWhat a happy, yummy day. The end.",
	"Little Star lived high in the sky. Every night she twinkled and said hello to the moon.\n\nOne night a sleepy owl said, Hoot hoot, thank you for the light! Little Star twinkled extra bright.\n\nNow when you look up at night, Little Star is twinkling just for you. The end.",
}

// CannedWriter picks one of a fixed set of stories, never the same one
// twice in a row.
type CannedWriter struct {
	stories []string

	mu   sync.Mutex
	rng  *rand.Rand
	last int
}

func NewCannedWriter(stories []string) *CannedWriter {
	if len(stories) == 0 {
		stories = builtinStories
	}
	return &CannedWriter{
		stories: stories,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		last:    -1,
	}
}

func (w *CannedWriter) Write(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.rng.Intn(len(w.stories))
	if len(w.stories) > 1 && i == w.last {
		i = (i + 1) % len(w.stories)
	}
	w.last = i
	return w.stories[i], nil
}
