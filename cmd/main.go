package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eduspeak/internal/app"
	"eduspeak/internal/cli/scheme/colours"
	"eduspeak/internal/config"
	"eduspeak/internal/metrics"
)

func main() {

	es := app.New()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		es.Stop()
		es.Close()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Goodbye! See you soon! 🌈"))
		os.Exit(0)
	}()

	var configFile string

	rootCmd := &cobra.Command{
		Use:   "eduspeak",
		Short: "🌈 Learn, listen and play",
		Long: `
┌─────────────────────────────────────┐
│  🌈 Welcome to EduSpeak! 🗣️         │
│  Flashcards that talk back          │
│  For little learners 👶✨           │
└─────────────────────────────────────┘

EduSpeak speaks animals, colours, numbers and more out loud, plays
guessing games and tells happy stories. 🎈
		`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(configFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log); err != nil {
				return err
			}
			if cfg.Metrics.Addr != "" {
				go serveMetrics(cfg.Metrics.Addr)
			}
			return es.Start(cfg)
		},
		Run: func(cmd *cobra.Command, args []string) {
			es.ShowWelcome()
		},
	}

	// Categories command
	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "📚 List learning categories",
		Long:  "Display every category of flashcards",
		Run:   es.ListCategories,
	}

	// Learn command
	learnCmd := &cobra.Command{
		Use:   "learn [category]",
		Short: "🃏 Learn with talking flashcards",
		Long:  "Pick a flashcard to hear its name spoken aloud",
		Run:   es.Learn,
	}

	// Quiz command
	quizCmd := &cobra.Command{
		Use:   "quiz [category]",
		Short: "🧩 Play a guessing game",
		Long:  "Listen to the question and pick the right card",
		Run:   es.Quiz,
	}

	// Story command
	storyCmd := &cobra.Command{
		Use:   "story",
		Short: "📖 Listen to a happy story",
		Long:  "Make up a short story for toddlers and read it aloud",
		Run:   es.TellStory,
	}

	// Settings command
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show voice and audio settings",
		Long:  "Display speech engine, voice, audio output and quiz settings",
		Run:   es.ConfigureSettings,
	}

	// Add flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default $HOME/.eduspeak/eduspeak.yaml)")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.String("engine", "", "Speech engine: auto, gemini, googletts or mock")
	flags.String("synth", "", "On-device synthesizer: auto, espeak or mock")
	flags.String("output", "", "Audio output: beep or oto")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")

	for key, flag := range map[string]string{
		"log.level":     "log-level",
		"speech.engine": "engine",
		"synth.type":    "synth",
		"audio.output":  "output",
		"metrics.addr":  "metrics-addr",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			colours.Error.Printf("❌ Error: %v\n", err)
			os.Exit(1)
		}
	}

	learnCmd.Flags().StringP("age", "a", "", "Age group: all, 0-2 or 2-4")
	learnCmd.Flags().Bool("no-prefetch", false, "Don't prepare card audio in the background")
	quizCmd.Flags().StringP("age", "a", "", "Age group: all, 0-2 or 2-4")
	quizCmd.Flags().IntP("questions", "n", 0, "Number of questions")
	quizCmd.Flags().IntP("options", "o", 0, "Options per question")
	quizCmd.Flags().Int64("seed", 0, "Random seed for repeatable quizzes")

	rootCmd.AddCommand(categoriesCmd, learnCmd, quizCmd, storyCmd, settingsCmd)

	err := rootCmd.Execute()
	es.Close()
	if err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	logrus.WithField("addr", addr).Info("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.WithError(err).Error("Metrics server stopped")
	}
}
