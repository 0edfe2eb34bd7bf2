// Package config loads settings from eduspeak.yaml, EDUSPEAK_* environment
// variables and a local .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Synth    SynthConfig    `mapstructure:"synth"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Learning LearningConfig `mapstructure:"learning"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Story    StoryConfig    `mapstructure:"story"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SpeechConfig configures remote speech generation.
type SpeechConfig struct {
	Engine        string `mapstructure:"engine"`
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	Voice         string `mapstructure:"voice"`
	Instruction   string `mapstructure:"instruction"`
	CloudVoice    string `mapstructure:"cloud_voice"`
	CloudLanguage string `mapstructure:"cloud_language"`
	// Fallback speaks on the device when generation fails.
	Fallback bool `mapstructure:"fallback"`
}

// SynthConfig configures on-device speech.
type SynthConfig struct {
	Type   string  `mapstructure:"type"`
	Voice  string  `mapstructure:"voice"`
	Volume float64 `mapstructure:"volume"`
}

type AudioConfig struct {
	Output string `mapstructure:"output"`
}

type LearningConfig struct {
	Age              string        `mapstructure:"age"`
	Prefetch         bool          `mapstructure:"prefetch"`
	PrefetchInterval time.Duration `mapstructure:"prefetch_interval"`
}

type QuizConfig struct {
	Questions    int           `mapstructure:"questions"`
	Options      int           `mapstructure:"options"`
	Seed         int64         `mapstructure:"seed"`
	AskDelay     time.Duration `mapstructure:"ask_delay"`
	CorrectDelay time.Duration `mapstructure:"correct_delay"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

type StoryConfig struct {
	Model string `mapstructure:"model"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func SetDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("speech.engine", "auto") // Auto-select best engine
	viper.SetDefault("speech.api_key", "")
	viper.SetDefault("speech.model", "gemini-2.5-flash-preview-tts")
	viper.SetDefault("speech.voice", "Kore")
	viper.SetDefault("speech.instruction", "Say cheerfully: %s")
	viper.SetDefault("speech.cloud_voice", "en-US-Chirp3-HD-Kore")
	viper.SetDefault("speech.cloud_language", "en-US")
	viper.SetDefault("speech.fallback", true)

	viper.SetDefault("synth.type", "auto")
	viper.SetDefault("synth.voice", "")
	viper.SetDefault("synth.volume", 1.0)

	viper.SetDefault("audio.output", "beep")

	viper.SetDefault("learning.age", "all")
	viper.SetDefault("learning.prefetch", true)
	viper.SetDefault("learning.prefetch_interval", 250*time.Millisecond)

	viper.SetDefault("quiz.questions", 5)
	viper.SetDefault("quiz.options", 3)
	viper.SetDefault("quiz.seed", 0)
	viper.SetDefault("quiz.ask_delay", 200*time.Millisecond)
	viper.SetDefault("quiz.correct_delay", 1500*time.Millisecond)
	viper.SetDefault("quiz.retry_delay", 1000*time.Millisecond)

	viper.SetDefault("story.model", "gemini-2.5-flash")

	viper.SetDefault("metrics.addr", "")
}

// Init reads .env, then the config file, then the environment. file may be
// empty to search $HOME/.eduspeak and the working directory.
func Init(file string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	SetDefaults()

	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName("eduspeak")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.eduspeak")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("EDUSPEAK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("speech.api_key", "EDUSPEAK_SPEECH_API_KEY", "GEMINI_API_KEY"); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load returns the current settings.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Speech.Engine {
	case "auto", "gemini", "googletts", "mock":
	default:
		return fmt.Errorf("unknown speech engine %q", c.Speech.Engine)
	}
	switch c.Synth.Type {
	case "auto", "espeak", "mock":
	default:
		return fmt.Errorf("unknown synthesizer %q", c.Synth.Type)
	}
	switch c.Audio.Output {
	case "beep", "oto":
	default:
		return fmt.Errorf("unknown audio output %q", c.Audio.Output)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Quiz.Questions < 1 || c.Quiz.Options < 1 {
		return fmt.Errorf("quiz needs at least one question and one option")
	}
	return nil
}
