package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

// RenderCardTable prints the weakest shown cards. name resolves card ids for
// display; ids are printed when it is nil or returns "".
func RenderCardTable(w io.Writer, records []model.ProgressRecord, name func(int) string, top int) error {
	weak := SelectWeakCards(records, top)
	if len(weak) == 0 {
		_, err := fmt.Fprintln(w, "No cards answered yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Weakest Cards"); err != nil {
		return err
	}

	headers := []string{"Card", "Shown", "Correct", "Incorrect", "Accuracy", "Error Ratio"}
	rows := make([][]string, 0, len(weak))
	for _, r := range weak {
		label := ""
		if name != nil {
			label = name(r.CardID)
		}
		if label == "" {
			label = fmt.Sprintf("#%d", r.CardID)
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%d", r.Shown),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
			fmt.Sprintf("%.2f%%", ScorePercent(r.Correct, r.Shown)),
			fmt.Sprintf("%.2f", r.ErrorRatio()),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
