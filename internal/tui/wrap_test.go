package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	lines := wrapText("New beginnings, spontaneity and a leap of faith", 16)
	assert.Equal(t, []string{"New beginnings,", "spontaneity and", "a leap of faith"}, lines)
}

func TestWrapTextHardBreaksLongWords(t *testing.T) {
	lines := wrapText("abcdefghij", 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, lines)
}

func TestWrapTextNoWidth(t *testing.T) {
	assert.Equal(t, []string{"as is"}, wrapText("as is", 0))
}

func TestWrapTextWideRunes(t *testing.T) {
	lines := wrapText("星星 月亮", 4)
	assert.Equal(t, []string{"星星", "月亮"}, lines)
}

func TestIndentWrapped(t *testing.T) {
	out := indentWrapped("A) ", "one two three", 10)
	assert.Equal(t, "A) one two\n   three", out)
}
