package ats

import (
	"math"
	"strings"
)

const (
	sectionWeight    = 40.0
	keywordWeight    = 30.0
	keywordTarget    = 10
	lengthFullPoints = 15.0
	lengthOverPoints = 10.0
	lengthMinPoints  = 5.0
	formatGoodPoints = 15.0
	formatMinPoints  = 5.0

	minWordCount = 300
	maxWordCount = 1000
	minTextBytes = 500
)

// Score combines section completeness, keyword density, document length, and
// a formatting heuristic into an integer in [0,100].
func Score(text string, sections SectionFlags, foundKeywords int) int {
	total := sectionPoints(sections) + keywordPoints(foundKeywords) + lengthPoints(text) + formatPoints(text)
	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// WordCount counts whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func sectionPoints(sections SectionFlags) float64 {
	return float64(sections.Count()) / 5.0 * sectionWeight
}

func keywordPoints(found int) float64 {
	if found < 0 {
		found = 0
	}
	density := float64(found) / float64(keywordTarget)
	if density > 1 {
		density = 1
	}
	return density * keywordWeight
}

func lengthPoints(text string) float64 {
	words := WordCount(text)
	switch {
	case words >= minWordCount && words <= maxWordCount:
		return lengthFullPoints
	case words > maxWordCount:
		return lengthOverPoints
	default:
		return lengthMinPoints
	}
}

func formatPoints(text string) float64 {
	if strings.Contains(text, "\n") && len(text) > minTextBytes {
		return formatGoodPoints
	}
	return formatMinPoints
}

// FormattingScore exposes the formatting component on its own for the
// persisted formatting block.
func FormattingScore(text string) int {
	return int(formatPoints(text))
}

// FormattingIssues lists detected formatting problems for the persisted
// formatting block.
func FormattingIssues(text string) []string {
	issues := []string{}
	if !strings.Contains(text, "\n") {
		issues = append(issues, "Resume text has no line breaks; content may be compressed into a single block")
	}
	if len(text) <= minTextBytes {
		issues = append(issues, "Resume content is very short")
	}
	return issues
}

// FormattingSuggestions lists remediation tips for the persisted formatting
// block. Empty when no issues were detected.
func FormattingSuggestions(text string) []string {
	suggestions := []string{}
	if !strings.Contains(text, "\n") {
		suggestions = append(suggestions, "Separate sections and bullet points onto their own lines")
	}
	if len(text) <= minTextBytes {
		suggestions = append(suggestions, "Expand your resume with more detail on experience and projects")
	}
	return suggestions
}
