package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eduspeak/internal/activity/quiz"
	"eduspeak/internal/cli/cards"
	"eduspeak/internal/cli/scheme/colours"
)

func (es *EduSpeak) Quiz(cmd *cobra.Command, args []string) {
	category, ok := es.chooseCategory(args)
	if !ok {
		return
	}
	age, err := es.ageFilter(cmd, category)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	questionCount, _ := cmd.Flags().GetInt("questions")
	if questionCount <= 0 {
		questionCount = es.cfg.Quiz.Questions
	}
	options, _ := cmd.Flags().GetInt("options")
	if options <= 0 {
		options = es.cfg.Quiz.Options
	}
	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = es.cfg.Quiz.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctl, err := quiz.New(quiz.Config{
		Items:              category.Filter(age),
		QuestionCount:      questionCount,
		OptionsPerQuestion: options,
		Rand:               rand.New(rand.NewSource(seed)),
		Speech:             es.speech,
		AskDelay:           es.cfg.Quiz.AskDelay,
		CorrectDelay:       es.cfg.Quiz.CorrectDelay,
		RetryDelay:         es.cfg.Quiz.RetryDelay,
		Logger:             es.log.WithFields(logrus.Fields{"component": "quiz", "category": category.ID}),
	})
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	defer ctl.Close()

	go func() {
		_ = ctl.PrefetchFeedback(es.ctx)
	}()

	fmt.Println()
	colours.Title.Printf("🧩 %s Quiz! 🧩\n", category.Title)

	asked := -1
	for {
		state := ctl.State()

		if state.Finished {
			fmt.Println()
			colours.Score.Printf("🏆 You got %d out of %d! 🏆\n", state.Score, state.Total)
			input, ok := es.read("🔁 Press 'r' to play again or Enter to finish: ")
			if ok && input == "r" {
				ctl.Restart()
				asked = -1
				continue
			}
			return
		}

		fmt.Println()
		colours.Info.Println(cards.Progress(state.Index, state.Total, state.Score))
		es.showOptions(state)

		if asked != state.Index {
			asked = state.Index
			if err := ctl.Ask(es.ctx); err != nil && !errors.Is(err, quiz.ErrBusy) {
				es.report(err)
			}
		}

		input, ok := es.read("👆 Which one? (number, 'r' to restart, 'q' to quit): ")
		if !ok || isQuit(input) {
			return
		}
		if input == "r" {
			ctl.Restart()
			asked = -1
			continue
		}

		n, ok := parseChoice(input, len(state.Question.Options))
		if !ok {
			colours.Error.Println("❌ Invalid selection! Please try again.")
			continue
		}
		choice := state.Question.Options[n-1]

		outcome, err := ctl.Answer(es.ctx, choice.Name)
		switch {
		case errors.Is(err, quiz.ErrDisabled):
			colours.Warning.Println("🙈 You already tried that one!")
		case errors.Is(err, quiz.ErrBusy):
			colours.Warning.Println("⏳ Listen first!")
		case err != nil:
			es.report(err)
		case outcome.Correct:
			colours.Success.Printf("🎉 %s Yes, that's the %s!\n", quiz.CorrectPhrase, choice.Name)
		default:
			colours.Warning.Printf("🤔 %s\n", quiz.RetryPhrase)
		}
	}
}

func (es *EduSpeak) showOptions(state quiz.State) {
	disabled := make(map[string]bool, len(state.Disabled))
	for _, name := range state.Disabled {
		disabled[name] = true
	}

	boxes := make([]cards.Card, 0, len(state.Question.Options))
	for i, o := range state.Question.Options {
		card := cards.Card{Index: i + 1, Emoji: o.Emoji, Label: o.Name}
		switch {
		case disabled[o.Name]:
			card.Look = cards.Disabled
		case o.Name == state.Selected && state.Feedback == quiz.FeedbackCorrect:
			card.Look = cards.Correct
		}
		boxes = append(boxes, card)
	}

	colours.Item.Printf("❓ %s\n", state.Question.Prompt())
	fmt.Println(cards.Grid(boxes, len(boxes)))
}
