package analyses

import (
	"time"

	"placement-backend/internal/ats"
)

// extractedTextLimit is the retained prefix of the extracted text; the full
// text is never persisted.
const extractedTextLimit = 1000

// Keywords holds the vocabulary-match outcome for one analysis.
type Keywords struct {
	Found       []string `json:"found"`
	Missing     []string `json:"missing"`
	Suggestions []string `json:"suggestions"`
}

// Formatting holds the formatting component of the score with its issues and
// remediation tips.
type Formatting struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Analysis is the persisted result of one resume upload + ATS analysis run.
// Records are create-only: never mutated after creation. A user accumulates
// one record per upload; "latest" means greatest AnalyzedAt.
type Analysis struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"userId"`
	ResumeURL          string           `json:"resumeUrl"`
	FileName           string           `json:"fileName"`
	StorageKey         string           `json:"-"`
	ATSScore           int              `json:"atsScore"`
	ExtractedText      string           `json:"extractedText"`
	Keywords           Keywords         `json:"keywords"`
	Sections           ats.SectionFlags `json:"sections"`
	Formatting         Formatting       `json:"formatting"`
	OverallSuggestions []string         `json:"overallSuggestions"`
	AnalyzedAt         time.Time        `json:"analyzedAt"`
}

func truncateText(text string) string {
	runes := []rune(text)
	if len(runes) <= extractedTextLimit {
		return text
	}
	return string(runes[:extractedTextLimit])
}
