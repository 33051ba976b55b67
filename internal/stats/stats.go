// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tarotquiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// ScorePercent returns score/total in the 0-100 range.
func ScorePercent(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of completed sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalPct, bestPct float64
	answered, correct := 0, 0
	for _, s := range sessions {
		pct := ScorePercent(s.Score, s.Total)
		totalPct += pct
		if pct > bestPct {
			bestPct = pct
		}
		answered += s.Total
		correct += s.Score
	}
	count := float64(len(sessions))
	last := sessions[len(sessions)-1]
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Questions answered: %d", answered),
		fmt.Sprintf("Correct answers: %d", correct),
		fmt.Sprintf("Avg score: %.2f%%", totalPct/count),
		fmt.Sprintf("Best score: %.2f%%", bestPct),
		fmt.Sprintf("Last session: %d out of %d on %s", last.Score, last.Total, last.EndedAt.Local().Format("2006-01-02 15:04")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a moving-average sparkline of session scores, keeping
// the most recent sessions that fit in width.
func RenderTrend(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	if len(sessions) < 2 {
		return nil
	}
	pcts := make([]float64, len(sessions))
	for i, s := range sessions {
		pcts[i] = ScorePercent(s.Score, s.Total)
	}
	pcts = MovingAverage(pcts, window)
	if width > 0 && len(pcts) > width {
		pcts = pcts[len(pcts)-width:]
	}
	if _, err := fmt.Fprintf(w, "Score trend (window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", Sparkline(pcts)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "min %.1f%%  max %.1f%%  last %.1f%%\n\n", minOf(pcts), maxOf(pcts), pcts[len(pcts)-1])
	return err
}

func minOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Min(out, v)
	}
	return out
}

func maxOf(values []float64) float64 {
	out := values[0]
	for _, v := range values[1:] {
		out = math.Max(out, v)
	}
	return out
}
