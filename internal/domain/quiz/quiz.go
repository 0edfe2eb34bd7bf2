// Package quiz builds multiple-choice questions from a pool of flashcard
// items.
package quiz

import (
	"math/rand"

	"eduspeak/internal/domain/learning"
)

const (
	DefaultQuestionCount      = 5
	DefaultOptionsPerQuestion = 3
)

// Question asks for Correct among Options. Options contains Correct exactly
// once.
type Question struct {
	Correct learning.Item
	Options []learning.Item
}

// Prompt is the spoken question.
func (q Question) Prompt() string {
	return "Which one is " + q.Correct.Name + "?"
}

// Option looks up an option by name.
func (q Question) Option(name string) (learning.Item, bool) {
	for _, o := range q.Options {
		if o.Name == name {
			return o, true
		}
	}
	return learning.Item{}, false
}

// Generate shuffles items and turns the first questionCount of them into
// questions with optionsPerQuestion options each. Both counts are reduced to
// the pool size when the pool is smaller. items is not modified.
func Generate(items []learning.Item, questionCount, optionsPerQuestion int, rng *rand.Rand) []Question {
	if len(items) == 0 || questionCount <= 0 {
		return nil
	}
	if optionsPerQuestion < 1 {
		optionsPerQuestion = 1
	}
	if optionsPerQuestion > len(items) {
		optionsPerQuestion = len(items)
	}
	if questionCount > len(items) {
		questionCount = len(items)
	}

	pool := shuffled(items, rng)
	questions := make([]Question, 0, questionCount)

	for i := 0; i < questionCount; i++ {
		correct := pool[i]

		others := make([]learning.Item, 0, len(pool)-1)
		for j, item := range pool {
			if j != i {
				others = append(others, item)
			}
		}
		others = shuffled(others, rng)

		options := append([]learning.Item{correct}, others[:optionsPerQuestion-1]...)
		rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		questions = append(questions, Question{Correct: correct, Options: options})
	}
	return questions
}

func shuffled(items []learning.Item, rng *rand.Rand) []learning.Item {
	out := make([]learning.Item, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
