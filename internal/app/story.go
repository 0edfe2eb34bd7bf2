package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"eduspeak/internal/cli/scheme/colours"
	"eduspeak/internal/story"
)

func (es *EduSpeak) TellStory(cmd *cobra.Command, args []string) {
	writer, err := story.NewWriter(es.ctx, story.WriterConfig{
		APIKey: es.cfg.Speech.APIKey,
		Model:  es.cfg.Story.Model,
	})
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	teller := story.NewTeller(story.Config{
		Writer: writer,
		Speech: es.speech,
		OnStory: func(s story.Story) {
			fmt.Println()
			colours.Title.Println("📖 Story Time 📖")
			fmt.Println()
			fmt.Println(s.Text)
			fmt.Println()
			colours.Success.Println("🎵 Starting story playback... 🎵")
		},
		Logger: es.log.WithField("component", "story"),
	})

	fmt.Println()
	colours.Prompt.Println("✨ Thinking of a story... ✨")
	es.tell(teller.NewStory)

	es.waitForUserInput(teller)
}

// tell runs fn in the background and reports how it ended.
func (es *EduSpeak) tell(fn func(context.Context) (story.Story, error)) {
	go func() {
		_, err := fn(es.ctx)
		switch {
		case errors.Is(err, story.ErrBusy):
			colours.Warning.Println("⏳ A story is already playing!")
		case errors.Is(err, story.ErrNoStory):
			colours.Warning.Println("📖 No story yet, press 'n' for a new one")
		case err != nil:
			colours.Error.Printf("❌ %s\n", story.FailureText)
		default:
			colours.Success.Println("✅ Story finished! 🌟")
		}
	}()
}

func (es *EduSpeak) waitForUserInput(teller *story.Teller) {
	for {
		select {
		case <-es.ctx.Done():
			return
		default:
			input, ok := es.read("\n⏸️  'p' pause/resume, 'r' replay, 'n' new story, 's' stop, 'q' quit: ")
			if !ok {
				teller.Stop()
				return
			}

			switch strings.ToLower(input) {
			case "p", "pause":
				if teller.Playing() {
					teller.Pause()
					colours.Warning.Println("⏸️  Paused")
				} else {
					teller.Resume()
					colours.Success.Println("▶️  Resumed")
				}
			case "r", "replay":
				es.tell(func(ctx context.Context) (story.Story, error) {
					return story.Story{}, teller.Replay(ctx)
				})
			case "n", "new":
				teller.Stop()
				colours.Prompt.Println("✨ Thinking of a story... ✨")
				es.tell(teller.NewStory)
			case "s", "stop":
				teller.Stop()
				colours.Warning.Println("⏹️  Stopped")
			case "q", "quit":
				teller.Stop()
				colours.Warning.Println("👋 Bye bye! 🌙")
				return
			case "":
				continue
			default:
				colours.Info.Println("ℹ️  Use 'p' for pause/resume, 's' to stop")
			}
		}
	}
}
