package practice

import (
	"fmt"

	"github.com/vytor/worddee/internal/models"
)

// ResultView is what the result overlay shows.
type ResultView struct {
	Score      string `json:"score"`
	Level      string `json:"level"`
	Sentence   string `json:"sentence"`
	Correction string `json:"correction"`
	Suggestion string `json:"suggestion"`
}

// NewResultView formats a scoring result next to the submitted sentence. The
// correction falls back to the suggestion when the backend sent none.
func NewResultView(res models.ValidationResult, sentence string) ResultView {
	correction := res.CorrectedSentence
	if correction == "" {
		correction = res.Suggestion
	}
	return ResultView{
		Score:      fmt.Sprintf("%.1f", res.Score),
		Level:      res.Level,
		Sentence:   sentence,
		Correction: correction,
		Suggestion: res.Suggestion,
	}
}
