package generate

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash-preview-tts"
	DefaultGeminiVoice = "Kore"
	DefaultInstruction = "Say cheerfully: %s"
)

// contentGenerator is the part of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator asks a Gemini TTS model for spoken audio.
type GeminiGenerator struct {
	models      contentGenerator
	model       string
	voice       string
	instruction string
}

func newGeminiGenerator(ctx context.Context, config Config) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini speech engine requires an API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newGeminiWithModels(client.Models, config), nil
}

func newGeminiWithModels(models contentGenerator, config Config) *GeminiGenerator {
	g := &GeminiGenerator{
		models:      models,
		model:       config.Model,
		voice:       config.Voice,
		instruction: config.Instruction,
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	if g.voice == "" {
		g.voice = DefaultGeminiVoice
	}
	if g.instruction == "" {
		g.instruction = DefaultInstruction
	}
	return g
}

func (g *GeminiGenerator) Name() string {
	return EngineTypeGemini.String()
}

func (g *GeminiGenerator) Generate(ctx context.Context, text string) (string, error) {
	return call(ctx, g.Name(), text, g.generate)
}

func (g *GeminiGenerator) generate(ctx context.Context, text string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voice},
			},
		},
	}
	cfg.ResponseModalities = append(cfg.ResponseModalities, "AUDIO")

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(g.instruction, text)), cfg)
	if err != nil {
		return "", err
	}
	return inlineAudio(resp)
}

// inlineAudio extracts candidates[0].content.parts[0].inlineData.
func inlineAudio(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoAudio
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", ErrNoAudio
	}
	part := content.Parts[0]
	if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
		return "", ErrNoAudio
	}
	return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
}
