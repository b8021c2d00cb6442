package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Summary is the aggregate returned by GET /api/summary.
type Summary struct {
	TotalAttempts       int64   `json:"total_attempts"`
	AverageScore        float64 `json:"average_score"`
	TotalWordsPracticed *int64  `json:"total_words_practiced,omitempty"`
	TotalMinutesLearned int64   `json:"total_minutes_learned"`
	DayStreak           *int64  `json:"day_streak,omitempty"`
	LastActiveDate      *string `json:"last_active_date,omitempty"`
}

// HistoryItem is one past attempt from GET /api/history. Everything but ID
// and Score is optional on the wire.
type HistoryItem struct {
	ID                int64      `json:"id"`
	Word              string     `json:"word,omitempty"`
	WordID            *int64     `json:"word_id,omitempty"`
	UserSentence      string     `json:"user_sentence,omitempty"`
	Score             float64    `json:"score"`
	Feedback          string     `json:"feedback,omitempty"`
	CorrectedSentence string     `json:"corrected_sentence,omitempty"`
	MinutesLearned    *int64     `json:"minutes_learned,omitempty"`
	DurationSeconds   *int64     `json:"duration_seconds,omitempty"`
	PracticedAt       *Timestamp `json:"practiced_at,omitempty"`
}

// HasPracticedAt reports whether the item carries a usable timestamp.
func (h HistoryItem) HasPracticedAt() bool {
	return h.PracticedAt != nil && !h.PracticedAt.IsZero()
}

// timestampLayouts are tried in order. The backend emits offset-less
// timestamps when its store drops the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a time.Time that tolerates the ISO variants the backend emits.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s using the accepted layouts. Offset-less values are
// read as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	// An unrecognised value leaves the timestamp zero rather than failing the
	// whole payload; callers fall back on HasPracticedAt.
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*t = Timestamp{}
		return nil
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
