// Package cards renders flashcards, category menus and quiz options as
// bordered boxes for the terminal.
package cards

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Colors
var (
	colorPrimary  = lipgloss.Color("#7C3AED")
	colorAccent   = lipgloss.Color("#F59E0B")
	colorSuccess  = lipgloss.Color("#10B981")
	colorMuted    = lipgloss.Color("#6B7280")
	colorDisabled = lipgloss.Color("#374151")
)

// Styles
var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1).
			Width(16).
			Align(lipgloss.Center)

	activeCardStyle = cardStyle.
			BorderForeground(colorAccent).
			Bold(true)

	correctCardStyle = cardStyle.
				BorderForeground(colorSuccess).
				Bold(true)

	disabledCardStyle = cardStyle.
				BorderForeground(colorDisabled).
				Foreground(colorDisabled).
				Strikethrough(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	noteStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)

// Look selects the card style.
type Look int

const (
	Normal Look = iota
	Active
	Correct
	Disabled
)

// Card is one box in a grid.
type Card struct {
	Index int
	Emoji string
	Label string
	Note  string
	Look  Look
}

func (c Card) render() string {
	var b strings.Builder
	if c.Index > 0 {
		fmt.Fprintf(&b, "%d. ", c.Index)
	}
	if c.Emoji != "" {
		b.WriteString(c.Emoji + " ")
	}
	b.WriteString(c.Label)
	if c.Note != "" {
		b.WriteString("\n" + noteStyle.Render(c.Note))
	}

	style := cardStyle
	switch c.Look {
	case Active:
		style = activeCardStyle
	case Correct:
		style = correctCardStyle
	case Disabled:
		style = disabledCardStyle
	}
	return style.Render(b.String())
}

// Grid lays cards out perRow to a row.
func Grid(cards []Card, perRow int) string {
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := start + perRow
		if end > len(cards) {
			end = len(cards)
		}
		boxes := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			boxes = append(boxes, c.render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Header renders a section title.
func Header(title string) string {
	return headerStyle.Render(title)
}

// CacheSummary describes the audio cache, e.g. "4 clips (12 kB)".
func CacheSummary(entries, bytes int) string {
	clips := "clips"
	if entries == 1 {
		clips = "clip"
	}
	return fmt.Sprintf("%d %s (%s)", entries, clips, humanize.Bytes(uint64(bytes)))
}

// Progress renders "Question 2 of 5 · ⭐ 1".
func Progress(index, total, score int) string {
	return fmt.Sprintf("Question %d of %d · ⭐ %d", index+1, total, score)
}
