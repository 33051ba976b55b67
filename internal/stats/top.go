package stats

import (
	"sort"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

// TopCardsByExposure returns the ids of the n most shown cards.
func TopCardsByExposure(records []model.ProgressRecord, n int) []int {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	items := make([]model.ProgressRecord, 0, len(records))
	for _, r := range records {
		if r.Shown > 0 {
			items = append(items, r)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Shown == items[j].Shown {
			return items[i].CardID < items[j].CardID
		}
		return items[i].Shown > items[j].Shown
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].CardID)
	}
	return out
}
