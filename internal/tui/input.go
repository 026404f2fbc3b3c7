package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// inputHeight returns the number of rows the draft needs when soft-wrapped
// at width the way the textarea wraps it, clamped to [1, maxLines].
func inputHeight(value string, width, maxLines int) int {
	if maxLines < 1 {
		maxLines = 1
	}
	if width < 1 {
		width = 1
	}
	rows := 0
	for _, line := range strings.Split(value, "\n") {
		rows += wrappedRows([]rune(line), width)
	}
	return min(max(rows, 1), maxLines)
}

// wrappedRows counts the rows of one hard line under the textarea's word
// wrapping: words move whole to the next row, words wider than the row are
// split, and a row filled to the edge leaves room for the cursor below it.
func wrappedRows(line []rune, width int) int {
	var (
		rows   = 1
		rowW   int
		word   []rune
		spaces int
	)
	for _, r := range line {
		if unicode.IsSpace(r) {
			spaces++
		} else {
			word = append(word, r)
		}

		if spaces > 0 {
			wordW := lipgloss.Width(string(word))
			if rowW+wordW+spaces > width {
				rows++
				rowW = 0
			}
			rowW += wordW + spaces
			spaces = 0
			word = nil
			continue
		}

		last := lipgloss.Width(string(word[len(word)-1]))
		if lipgloss.Width(string(word))+last > width {
			if rowW > 0 {
				rows++
			}
			rowW = lipgloss.Width(string(word))
			word = nil
		}
	}
	if rowW+lipgloss.Width(string(word))+spaces >= width {
		rows++
	}
	return rows
}
