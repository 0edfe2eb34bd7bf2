package generate

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/texttospeech/apiv1"
	"github.com/googleapis/gax-go/v2"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"

	"eduspeak/internal/audio"
)

const (
	DefaultCloudVoice    = "en-US-Chirp3-HD-Kore"
	DefaultCloudLanguage = "en-US"
)

type speechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// GoogleCloudGenerator uses Google Cloud Text-to-Speech, asking for LINEAR16
// at the speech sample rate and stripping the WAV container.
type GoogleCloudGenerator struct {
	client   speechSynthesizer
	closer   func() error
	voice    string
	language string
}

func newGoogleCloudGenerator(ctx context.Context, config Config) (*GoogleCloudGenerator, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	g := newGoogleCloudWithClient(client, config)
	g.closer = client.Close
	return g, nil
}

func newGoogleCloudWithClient(client speechSynthesizer, config Config) *GoogleCloudGenerator {
	g := &GoogleCloudGenerator{
		client:   client,
		voice:    config.CloudVoice,
		language: config.CloudLanguage,
	}
	if g.voice == "" {
		g.voice = DefaultCloudVoice
	}
	if g.language == "" {
		g.language = DefaultCloudLanguage
	}
	return g
}

func (g *GoogleCloudGenerator) Name() string {
	return EngineTypeGoogleCloud.String()
}

func (g *GoogleCloudGenerator) Generate(ctx context.Context, text string) (string, error) {
	return call(ctx, g.Name(), text, g.generate)
}

func (g *GoogleCloudGenerator) generate(ctx context.Context, text string) (string, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: int32(audio.SpeechFormat.SampleRate),
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.GetAudioContent()) == 0 {
		return "", ErrNoAudio
	}

	pcm, err := stripWAVHeader(resp.GetAudioContent())
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(pcm), nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleCloudGenerator) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}
