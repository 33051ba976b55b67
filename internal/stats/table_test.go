package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Card", "Ratio", "Shown"}
	rows := [][]string{
		{"The Fool", "1.50", "12"},
		{"Ace of Cups", "0.25", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	require.Len(t, lines, 3)
	assert.Equal(t, "Card        Ratio Shown", lines[0])
	assert.Equal(t, "The Fool     1.50    12", lines[1])
	assert.Equal(t, "Ace of Cups  0.25     3", lines[2])
}

func TestRenderCardTable(t *testing.T) {
	names := map[int]string{1: "The Magician", 2: "The High Priestess"}
	records := []model.ProgressRecord{
		{CardID: 1, Shown: 3, Correct: 2, Incorrect: 1},
		{CardID: 2, Shown: 2, Incorrect: 2},
		{CardID: 3},
	}
	var buf bytes.Buffer
	require.NoError(t, RenderCardTable(&buf, records, func(id int) string { return names[id] }, 10))
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "Weakest Cards")
	assert.Contains(t, lines[2], "The High Priestess")
	assert.Contains(t, lines[2], "2.00")
	assert.Contains(t, lines[3], "The Magician")
	assert.NotContains(t, out, "\n3 ")

	buf.Reset()
	require.NoError(t, RenderCardTable(&buf, []model.ProgressRecord{{CardID: 1}}, nil, 10))
	assert.Equal(t, "No cards answered yet.\n", buf.String())
}
