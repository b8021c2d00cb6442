package dashboard

import (
	"fmt"
	"sort"

	"github.com/vytor/worddee/internal/models"
)

// Chart y-axis bounds; scores are on a 0-10 scale.
const (
	ScoreMin = 0
	ScoreMax = 10
)

// Ordering says how OrderHistory arrived at its result.
type Ordering string

const (
	// OrderedByTimestamp means every item had practiced_at and was sorted on it.
	OrderedByTimestamp Ordering = "timestamp"
	// OrderedByReversal means at least one timestamp was missing and the
	// received order was assumed newest-first and reversed. This is a guess
	// about the backend, not a contract.
	OrderedByReversal Ordering = "reversed"
)

// OrderHistory returns a copy of items in approximate chronological order
// (oldest first) and how that order was derived.
func OrderHistory(items []models.HistoryItem) ([]models.HistoryItem, Ordering) {
	out := make([]models.HistoryItem, len(items))
	copy(out, items)
	if len(out) == 0 {
		return out, OrderedByTimestamp
	}

	for _, it := range out {
		if !it.HasPracticedAt() {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
			return out, OrderedByReversal
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PracticedAt.Before(out[j].PracticedAt.Time)
	})
	return out, OrderedByTimestamp
}

// Point is one chart sample.
type Point struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Series is the score-over-time chart.
type Series struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Points []Point   `json:"-"`
	YMin   float64   `json:"y_min"`
	YMax   float64   `json:"y_max"`
}

// Empty reports whether there is nothing to plot.
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// ChartSeries labels ordered items "Attempt 1", "Attempt 2", ... with their
// score as the y value.
func ChartSeries(ordered []models.HistoryItem) Series {
	s := Series{
		Labels: make([]string, 0, len(ordered)),
		Scores: make([]float64, 0, len(ordered)),
		Points: make([]Point, 0, len(ordered)),
		YMin:   ScoreMin,
		YMax:   ScoreMax,
	}
	for i, it := range ordered {
		label := fmt.Sprintf("Attempt %d", i+1)
		s.Labels = append(s.Labels, label)
		s.Scores = append(s.Scores, it.Score)
		s.Points = append(s.Points, Point{Label: label, Score: it.Score})
	}
	return s
}

// TotalLearningSeconds sums duration_seconds, counting missing or negative
// values as zero.
func TotalLearningSeconds(items []models.HistoryItem) int64 {
	var total int64
	for _, it := range items {
		if it.DurationSeconds != nil && *it.DurationSeconds > 0 {
			total += *it.DurationSeconds
		}
	}
	return total
}

// LearningTime is a total split for display.
type LearningTime struct {
	TotalSeconds int64
	Hours        int64
	Minutes      int64
}

func NewLearningTime(totalSeconds int64) LearningTime {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return LearningTime{
		TotalSeconds: totalSeconds,
		Hours:        totalSeconds / 3600,
		Minutes:      (totalSeconds % 3600) / 60,
	}
}

// String renders "1h 5m", omitting hours when zero ("2m").
func (lt LearningTime) String() string {
	if lt.Hours > 0 {
		return fmt.Sprintf("%dh %dm", lt.Hours, lt.Minutes)
	}
	return fmt.Sprintf("%dm", lt.Minutes)
}
