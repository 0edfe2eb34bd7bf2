package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	activity "eduspeak/internal/activity/learning"
	"eduspeak/internal/cli/cards"
	"eduspeak/internal/cli/scheme/colours"
	"eduspeak/internal/domain/learning"
)

var ageCycle = []learning.AgeGroup{learning.AgeAll, learning.Age0To2, learning.Age2To4}

func (es *EduSpeak) Learn(cmd *cobra.Command, args []string) {
	category, ok := es.chooseCategory(args)
	if !ok {
		return
	}
	age, err := es.ageFilter(cmd, category)
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}

	ctl, err := activity.New(activity.Config{
		Category:         category,
		Age:              age,
		Speech:           es.speech,
		PrefetchInterval: es.cfg.Learning.PrefetchInterval,
		Logger:           es.log.WithField("component", "learning"),
	})
	if err != nil {
		colours.Error.Printf("❌ %v\n", err)
		return
	}
	defer ctl.Close()

	noPrefetch, _ := cmd.Flags().GetBool("no-prefetch")
	if es.cfg.Learning.Prefetch && !noPrefetch {
		ctl.StartPrefetch(es.ctx)
	}

	for {
		items := ctl.Items()
		es.showFlashcards(ctl, items)

		prompt := "👆 Pick a card number (q to go back): "
		if category.HasAgeFilter {
			prompt = "👆 Pick a card number (a to change age, q to go back): "
		}
		input, ok := es.read(prompt)
		if !ok || isQuit(input) {
			return
		}

		if input == "a" && category.HasAgeFilter {
			next := nextAge(ctl.Age())
			if err := ctl.SetAgeFilter(next); err != nil {
				colours.Error.Printf("❌ %v\n", err)
			} else {
				colours.Info.Printf("🎯 Showing ages: %s\n", next)
			}
			continue
		}

		n, ok := parseChoice(input, len(items))
		if !ok {
			colours.Error.Println("❌ Invalid selection! Please try again.")
			continue
		}
		item := items[n-1]

		colours.Item.Printf("\n   %s  %s\n\n", item.Emoji, learning.Phrase(category.ID, item))
		if err := ctl.Select(es.ctx, item.Name); err != nil {
			if errors.Is(err, activity.ErrBusy) {
				colours.Warning.Println("⏳ Wait for the card to finish!")
				continue
			}
			es.report(err)
			continue
		}

		es.read("✨ Press Enter to close the card ")
		ctl.Dismiss()
	}
}

func (es *EduSpeak) showFlashcards(ctl *activity.Controller, items []learning.Item) {
	category := ctl.Category()

	fmt.Println()
	title := fmt.Sprintf("%s %s", category.Emoji, category.Title)
	if category.HasAgeFilter {
		title += fmt.Sprintf(" (ages: %s)", ctl.Age())
	}
	fmt.Println(cards.Header(title))

	boxes := make([]cards.Card, 0, len(items))
	for i, item := range items {
		card := cards.Card{Index: i + 1, Emoji: item.Emoji, Label: item.Name}
		if es.speech.Cached(item.Name) {
			card.Note = "🔊 ready"
		}
		switch ctl.Status(item.Name) {
		case activity.ItemLoading, activity.ItemSpeaking, activity.ItemSelected:
			card.Look = cards.Active
		}
		boxes = append(boxes, card)
	}
	fmt.Println(cards.Grid(boxes, 4))
}

func nextAge(age learning.AgeGroup) learning.AgeGroup {
	for i, a := range ageCycle {
		if a == age {
			return ageCycle[(i+1)%len(ageCycle)]
		}
	}
	return learning.AgeAll
}
