// Package generate turns text into pre-rendered speech by calling a remote
// text-to-speech service. Every backend returns base64 raw PCM in
// audio.SpeechFormat.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"eduspeak/internal/metrics"
)

// Generator produces an encoded audio payload for text.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
	Name() string
}

// GenerationError reports a failed remote generation.
type GenerationError struct {
	Engine string
	Text   string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generate speech for %q: %v", e.Engine, e.Text, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

var (
	// ErrEmptyText is returned for blank input.
	ErrEmptyText = errors.New("text is empty")
	// ErrNoAudio is returned when the service answers without audio.
	ErrNoAudio = errors.New("no audio data received")
)

// Config selects and tunes a backend.
type Config struct {
	Type string

	// Gemini
	APIKey      string
	Model       string
	Voice       string
	Instruction string

	// Google Cloud Text-to-Speech
	CloudVoice    string
	CloudLanguage string
}

type EngineType string

const (
	EngineTypeGemini      EngineType = "gemini"
	EngineTypeGoogleCloud EngineType = "googletts"
	EngineTypeMock        EngineType = "mock"
	EngineTypeAuto        EngineType = "auto"
)

func (e EngineType) String() string {
	return string(e)
}

// NewGenerator creates the backend named by config.Type.
func NewGenerator(ctx context.Context, config Config) (Generator, error) {
	if config.Type == "" || config.Type == EngineTypeAuto.String() {
		config.Type = bestEngine(config).String()
	}

	switch config.Type {
	case EngineTypeGemini.String():
		return newGeminiGenerator(ctx, config)

	case EngineTypeGoogleCloud.String():
		return newGoogleCloudGenerator(ctx, config)

	case EngineTypeMock.String():
		return NewMockGenerator(), nil

	default:
		return nil, fmt.Errorf("unsupported speech engine: %s", config.Type)
	}
}

func bestEngine(config Config) EngineType {
	if config.APIKey != "" {
		return EngineTypeGemini
	}
	if hasGoogleCredentials() {
		return EngineTypeGoogleCloud
	}
	return EngineTypeMock
}

func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}

// call runs one backend request with validation, error wrapping and metrics.
func call(ctx context.Context, engine, text string, fn func(context.Context, string) (string, error)) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Engine: engine, Text: text, Err: ErrEmptyText}
	}

	start := time.Now()
	payload, err := fn(ctx, text)
	if err == nil && payload == "" {
		err = ErrNoAudio
	}
	metrics.RecordGeneration(engine, err, time.Since(start))

	if err != nil {
		return "", &GenerationError{Engine: engine, Text: text, Err: err}
	}
	return payload, nil
}
