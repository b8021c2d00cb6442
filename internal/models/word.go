package models

// Word is the word of the day as served by GET /api/word.
type Word struct {
	ID              int64  `json:"id"`
	Word            string `json:"word"`
	Definition      string `json:"definition"`
	DifficultyLevel string `json:"difficulty_level"`
}

// ValidateRequest is the body of POST /api/validate-sentence.
type ValidateRequest struct {
	WordID          int64  `json:"word_id"`
	Sentence        string `json:"sentence"`
	DurationSeconds int64  `json:"duration_seconds"`
	ClientTimeISO   string `json:"client_time_iso"`
}

// ValidationResult is the scoring payload returned for a submitted sentence.
type ValidationResult struct {
	Score             float64 `json:"score"`
	Level             string  `json:"level"`
	Suggestion        string  `json:"suggestion"`
	CorrectedSentence string  `json:"corrected_sentence"`

	// Echoed back by the backend; not required by the page.
	MinutesLearned  *int64 `json:"minutes_learned,omitempty"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
}
