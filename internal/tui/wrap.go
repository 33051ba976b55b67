// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text into lines no wider than width cells, splitting at
// spaces where possible and hard-breaking words that do not fit.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var line []rune
	lineWidth := 0
	lastSpaceIdx := -1

	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if r == ' ' {
				lines = append(lines, string(line))
				line, lineWidth, lastSpaceIdx = line[:0], 0, -1
				continue
			}
			if lastSpaceIdx >= 0 {
				lines = append(lines, string(line[:lastSpaceIdx]))
				line = append([]rune{}, line[lastSpaceIdx+1:]...)
			} else {
				lines = append(lines, string(line))
				line = line[:0]
			}
			lineWidth = runewidth.StringWidth(string(line))
			lastSpaceIdx = lastSpaceIndex(line)
		}
		line = append(line, r)
		lineWidth += rw
		if r == ' ' {
			lastSpaceIdx = len(line) - 1
		}
	}
	lines = append(lines, string(line))
	return lines
}

func lastSpaceIndex(line []rune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i] == ' ' {
			return i
		}
	}
	return -1
}

// indentWrapped wraps text and prefixes continuation lines so they line up
// under the first line's content.
func indentWrapped(prefix, text string, width int) string {
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	lines := wrapText(text, width-runewidth.StringWidth(prefix))
	for i := range lines {
		if i == 0 {
			lines[i] = prefix + lines[i]
		} else {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
