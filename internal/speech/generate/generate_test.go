package generate

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/genai"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"eduspeak/internal/audio"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func audioResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				InlineData: &genai.Blob{Data: data, MIMEType: "audio/L16;rate=24000"},
			}}},
		}},
	}
}

func TestGemini_Generate(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	models := &fakeModels{resp: audioResponse(pcm)}
	g := newGeminiWithModels(models, Config{})

	payload, err := g.Generate(context.Background(), "Cat")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if payload != base64.StdEncoding.EncodeToString(pcm) {
		t.Errorf("payload = %q", payload)
	}

	if models.model != DefaultGeminiModel {
		t.Errorf("model = %q, want %q", models.model, DefaultGeminiModel)
	}
	if models.prompt != "Say cheerfully: Cat" {
		t.Errorf("prompt = %q", models.prompt)
	}
	if got := models.config.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName; got != "Kore" {
		t.Errorf("voice = %q, want Kore", got)
	}
	if len(models.config.ResponseModalities) != 1 || string(models.config.ResponseModalities[0]) != "AUDIO" {
		t.Errorf("modalities = %v", models.config.ResponseModalities)
	}
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
		want error
	}{
		{"transport error", nil, errors.New("connection reset"), nil},
		{"no candidates", &genai.GenerateContentResponse{}, nil, ErrNoAudio},
		{"text only", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "hello"}}},
		}}}, nil, ErrNoAudio},
		{"empty audio", audioResponse(nil), nil, ErrNoAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGeminiWithModels(&fakeModels{resp: tt.resp, err: tt.err}, Config{})
			_, err := g.Generate(context.Background(), "Dog")

			var genErr *GenerationError
			if !errors.As(err, &genErr) {
				t.Fatalf("expected GenerationError, got %v", err)
			}
			if genErr.Engine != "gemini" || genErr.Text != "Dog" {
				t.Errorf("error fields = %+v", genErr)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerate_EmptyText(t *testing.T) {
	models := &fakeModels{resp: audioResponse([]byte{0, 0})}
	g := newGeminiWithModels(models, Config{})

	_, err := g.Generate(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
	if models.model != "" {
		t.Error("remote call issued for empty text")
	}
}

type fakeSynthesizer struct {
	req  *texttospeechpb.SynthesizeSpeechRequest
	resp *texttospeechpb.SynthesizeSpeechResponse
	err  error
}

func (f *fakeSynthesizer) SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	f.req = req
	return f.resp, f.err
}

func wavFile(pcm []byte) []byte {
	var b []byte
	le := binary.LittleEndian
	b = append(b, "RIFF"...)
	b = le.AppendUint32(b, uint32(36+len(pcm)))
	b = append(b, "WAVE"...)
	b = append(b, "fmt "...)
	b = le.AppendUint32(b, 16)
	b = append(b, make([]byte, 16)...)
	b = append(b, "data"...)
	b = le.AppendUint32(b, uint32(len(pcm)))
	return append(b, pcm...)
}

func TestGoogleCloud_Generate(t *testing.T) {
	pcm := []byte{10, 0, 20, 0, 30, 0}
	client := &fakeSynthesizer{resp: &texttospeechpb.SynthesizeSpeechResponse{AudioContent: wavFile(pcm)}}
	g := newGoogleCloudWithClient(client, Config{})

	payload, err := g.Generate(context.Background(), "The number 3.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if payload != base64.StdEncoding.EncodeToString(pcm) {
		t.Errorf("payload = %q", payload)
	}

	cfg := client.req.GetAudioConfig()
	if cfg.GetAudioEncoding() != texttospeechpb.AudioEncoding_LINEAR16 || cfg.GetSampleRateHertz() != 24000 {
		t.Errorf("audio config = %v", cfg)
	}
	if client.req.GetVoice().GetName() != DefaultCloudVoice {
		t.Errorf("voice = %q", client.req.GetVoice().GetName())
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestGoogleCloud_EmptyResponse(t *testing.T) {
	client := &fakeSynthesizer{resp: &texttospeechpb.SynthesizeSpeechResponse{}}
	_, err := newGoogleCloudWithClient(client, Config{}).Generate(context.Background(), "hi")
	if !errors.Is(err, ErrNoAudio) {
		t.Errorf("error = %v, want ErrNoAudio", err)
	}
}

func TestStripWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}

	got, err := stripWAVHeader(wavFile(pcm))
	if err != nil || string(got) != string(pcm) {
		t.Errorf("stripWAVHeader(wav) = %v, %v", got, err)
	}

	got, err = stripWAVHeader(pcm)
	if err != nil || string(got) != string(pcm) {
		t.Errorf("raw PCM should pass through, got %v, %v", got, err)
	}

	if _, err := stripWAVHeader([]byte("RIFF\x00\x00\x00\x00AVI ")); err == nil {
		t.Error("expected an error for a non-WAVE RIFF file")
	}
}

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator()

	a, err := m.Generate(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, _ := m.Generate(context.Background(), "Apple")
	if a != b {
		t.Error("mock output is not deterministic")
	}
	if m.Calls("Apple") != 2 {
		t.Errorf("Calls = %d, want 2", m.Calls("Apple"))
	}

	if _, err := audio.Decode(a, audio.SpeechFormat); err != nil {
		t.Errorf("mock payload does not decode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Generate(ctx, "Pear"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestNewGenerator(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	g, err := NewGenerator(context.Background(), Config{Type: "mock"})
	if err != nil || g.Name() != "mock" {
		t.Fatalf("NewGenerator(mock) = %v, %v", g, err)
	}

	if _, err := NewGenerator(context.Background(), Config{Type: "gemini"}); err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("gemini without key: %v", err)
	}
	if _, err := NewGenerator(context.Background(), Config{Type: "polly"}); err == nil {
		t.Error("expected an error for an unknown engine")
	}
}

func TestBestEngine(t *testing.T) {
	if got := bestEngine(Config{APIKey: "k"}); got != EngineTypeGemini {
		t.Errorf("with API key: %v", got)
	}
}
