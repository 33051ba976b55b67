package stats

import (
	"sort"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

// SelectWeakCards returns up to top shown records with the highest error
// ratio, weakest first. Ties fall back to more misses, then card id.
func SelectWeakCards(records []model.ProgressRecord, top int) []model.ProgressRecord {
	candidates := make([]model.ProgressRecord, 0, len(records))
	for _, r := range records {
		if r.Shown > 0 {
			candidates = append(candidates, r)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ri := candidates[i].ErrorRatio()
		rj := candidates[j].ErrorRatio()
		if ri != rj {
			return ri > rj
		}
		if candidates[i].Incorrect != candidates[j].Incorrect {
			return candidates[i].Incorrect > candidates[j].Incorrect
		}
		return candidates[i].CardID < candidates[j].CardID
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}

// Coverage counts how many records have been shown at least once.
func Coverage(records []model.ProgressRecord) (shown, total int) {
	for _, r := range records {
		if r.Shown > 0 {
			shown++
		}
	}
	return shown, len(records)
}
