// Package app is the EduSpeak terminal front-end. Its methods are cobra
// command handlers.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduspeak/internal/audio"
	"eduspeak/internal/audio/device"
	"eduspeak/internal/cli/cards"
	"eduspeak/internal/cli/scheme/colours"
	"eduspeak/internal/config"
	"eduspeak/internal/domain/learning"
	"eduspeak/internal/speech"
	"eduspeak/internal/speech/cache"
	"eduspeak/internal/speech/generate"
	"eduspeak/internal/speech/synth"
)

// EduSpeak main application structure
type EduSpeak struct {
	cfg       *config.Config
	log       *logrus.Entry
	session   string
	synth     synth.Engine
	generator generate.Generator
	player    *audio.Player
	speech    *speech.Service
	in        *bufio.Reader

	ctx    context.Context
	Cancel context.CancelFunc

	// mu guards the devices against a shutdown signal racing Start.
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func New() *EduSpeak {
	ctx, cancel := context.WithCancel(context.Background())
	return &EduSpeak{
		in:     bufio.NewReader(os.Stdin),
		ctx:    ctx,
		Cancel: cancel,
	}
}

// Start wires the speech stack for cfg. It must be called before any
// command handler runs.
func (es *EduSpeak) Start(cfg *config.Config) error {
	session := uuid.NewString()
	log := logrus.WithField("session", session)

	if err := learning.ValidateCatalog(); err != nil {
		return err
	}

	engine, err := synth.NewEngine(synth.Config{
		Type:   cfg.Synth.Type,
		Voice:  cfg.Synth.Voice,
		Volume: cfg.Synth.Volume,
	})
	if err != nil {
		return fmt.Errorf("failed to create speech synthesizer: %w", err)
	}

	output, err := device.Factory(cfg.Audio.Output)
	if err != nil {
		return err
	}

	gen, err := generate.NewGenerator(es.ctx, generate.Config{
		Type:          cfg.Speech.Engine,
		APIKey:        cfg.Speech.APIKey,
		Model:         cfg.Speech.Model,
		Voice:         cfg.Speech.Voice,
		Instruction:   cfg.Speech.Instruction,
		CloudVoice:    cfg.Speech.CloudVoice,
		CloudLanguage: cfg.Speech.CloudLanguage,
	})
	if err != nil {
		return fmt.Errorf("failed to create speech engine: %w", err)
	}

	playerLog := log.WithField("component", "player")
	player := audio.NewPlayer(audio.PlayerConfig{
		Format: audio.SpeechFormat,
		Output: output,
		Synth:  engine,
		OnStateChange: func(s audio.State) {
			playerLog.WithField("state", s).Trace("Playback state changed")
		},
		Logger: playerLog,
	})

	svc := speech.New(speech.Config{
		Generator: gen,
		Cache:     cache.New(),
		Player:    player,
		Fallback:  cfg.Speech.Fallback,
		Logger:    log.WithField("component", "speech"),
	})

	es.mu.Lock()
	if es.closed {
		es.mu.Unlock()
		release(log, player, gen)
		return context.Canceled
	}
	es.cfg = cfg
	es.session = session
	es.log = log
	es.synth = engine
	es.generator = gen
	es.player = player
	es.speech = svc
	es.mu.Unlock()

	log.WithFields(logrus.Fields{
		"engine": gen.Name(),
		"output": cfg.Audio.Output,
	}).Debug("EduSpeak started")
	return nil
}

// Close stops playback and releases the audio device and remote clients.
// Only the first call does anything.
func (es *EduSpeak) Close() {
	es.closeOnce.Do(func() {
		es.Cancel()

		es.mu.Lock()
		es.closed = true
		log, player, gen := es.log, es.player, es.generator
		es.mu.Unlock()

		if log == nil {
			log = logrus.NewEntry(logrus.StandardLogger())
		}
		release(log, player, gen)
	})
}

func release(log *logrus.Entry, player *audio.Player, gen generate.Generator) {
	if player != nil {
		if err := player.Close(); err != nil {
			log.WithError(err).Warn("Failed to close audio output")
		}
	}
	if closer, ok := gen.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("Failed to close speech engine")
		}
	}
}

// Stop silences whatever is playing.
func (es *EduSpeak) Stop() {
	es.mu.Lock()
	player := es.player
	es.mu.Unlock()

	if player != nil {
		player.Cancel()
	}
}

func (es *EduSpeak) ShowWelcome() {
	fmt.Println()
	colours.Title.Println("🌈 Welcome to EduSpeak! 🌈")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • eduspeak categories - See all the things to learn")
	fmt.Println("  • eduspeak learn      - Tap flashcards and hear them")
	fmt.Println("  • eduspeak quiz       - Play a guessing game")
	fmt.Println("  • eduspeak story      - Listen to a happy story")
	fmt.Println("  • eduspeak settings   - Show voice and audio settings")
	fmt.Println()
	colours.Prompt.Println("✨ Ready to learn and play? ✨")
}

func (es *EduSpeak) ListCategories(cmd *cobra.Command, args []string) {
	fmt.Println()
	fmt.Println(cards.Header("📚 Categories 📚"))

	var boxes []cards.Card
	for i, c := range learning.Catalog() {
		boxes = append(boxes, cards.Card{
			Index: i + 1,
			Emoji: c.Emoji,
			Label: c.Title,
			Note:  fmt.Sprintf("%d cards", len(c.Items)),
		})
	}
	fmt.Println(cards.Grid(boxes, 4))
	fmt.Println()
	colours.Info.Println("💡 Try: eduspeak learn animals  or  eduspeak quiz fruits")
}

func (es *EduSpeak) ConfigureSettings(cmd *cobra.Command, args []string) {
	fmt.Println()
	colours.Title.Println("⚙️ Settings ⚙️")
	fmt.Println()

	colours.Prompt.Println("🎤 Speech:")
	fmt.Printf("  • Engine: %s\n", es.generator.Name())
	fmt.Printf("  • Voice: %s\n", es.cfg.Speech.Voice)
	fmt.Printf("  • Device fallback: %v\n", es.cfg.Speech.Fallback)
	fmt.Println()

	colours.Prompt.Println("🗣️ On-device voice:")
	fmt.Printf("  • Synthesizer: %s\n", es.cfg.Synth.Type)
	fmt.Printf("  • Volume: %.0f%%\n", es.cfg.Synth.Volume*100)
	if voices, err := es.synth.Voices(); err != nil {
		colours.Warning.Printf("  • Voices unavailable: %v\n", err)
	} else {
		fmt.Printf("  • %d voices installed\n", len(voices))
	}
	fmt.Println()

	colours.Prompt.Println("🔈 Audio:")
	fmt.Printf("  • Output: %s\n", es.cfg.Audio.Output)
	fmt.Printf("  • Cache: %s\n", cards.CacheSummary(es.speech.Cache().Len(), es.speech.Cache().Bytes()))
	fmt.Println()

	colours.Prompt.Println("🧩 Quiz:")
	fmt.Printf("  • %d questions, %d options each\n", es.cfg.Quiz.Questions, es.cfg.Quiz.Options)
	fmt.Println()

	colours.Info.Println("💡 Change these in eduspeak.yaml or with EDUSPEAK_* environment variables")
}

// chooseCategory resolves the category named in args, or asks for one.
func (es *EduSpeak) chooseCategory(args []string) (learning.Category, bool) {
	if len(args) > 0 {
		c, ok := learning.Lookup(strings.Join(args, " "))
		if !ok {
			colours.Error.Printf("❌ Category '%s' not found!\n", strings.Join(args, " "))
		}
		return c, ok
	}

	catalog := learning.Catalog()
	fmt.Println()
	colours.Title.Println("📚 Choose a category! 📚")
	fmt.Println()
	for i, c := range catalog {
		fmt.Printf("%d. %s %s\n", i+1, c.Emoji, c.Title)
	}
	fmt.Println()

	input, ok := es.read("🌟 Enter a number (or 'q' to quit): ")
	if !ok || isQuit(input) {
		return learning.Category{}, false
	}
	n, ok := parseChoice(input, len(catalog))
	if !ok {
		colours.Error.Println("❌ Invalid selection! Please try again.")
		return learning.Category{}, false
	}
	return catalog[n-1], true
}

// ageFilter resolves the --age flag against the category.
func (es *EduSpeak) ageFilter(cmd *cobra.Command, category learning.Category) (learning.AgeGroup, error) {
	value, _ := cmd.Flags().GetString("age")
	if value == "" {
		value = es.cfg.Learning.Age
	}
	age, err := learning.ParseAgeGroup(value)
	if err != nil {
		return learning.AgeAll, err
	}
	if age != learning.AgeAll && !category.HasAgeFilter {
		colours.Warning.Printf("⚠️ %s has no age groups, showing all cards\n", category.Title)
		return learning.AgeAll, nil
	}
	return age, nil
}

func (es *EduSpeak) read(prompt string) (string, bool) {
	colours.Prompt.Print(prompt)
	input, err := es.in.ReadString('\n')
	if err != nil && input == "" {
		return "", false
	}
	return strings.TrimSpace(input), true
}

// report prints an error the child's grown-up can act on.
func (es *EduSpeak) report(err error) {
	var genErr *generate.GenerationError
	var decodeErr *audio.DecodeError
	switch {
	case errors.As(err, &genErr):
		colours.Error.Println("❌ Couldn't make the voice right now. Please try again!")
	case errors.As(err, &decodeErr):
		colours.Error.Println("❌ That sound was broken. Please try again!")
	default:
		colours.Error.Printf("❌ %v\n", err)
	}
}

func parseChoice(input string, limit int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n, true
}

func isQuit(input string) bool {
	input = strings.ToLower(input)
	return input == "q" || input == "quit"
}
