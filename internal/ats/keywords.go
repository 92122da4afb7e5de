package ats

import "strings"

// MatchKeywords returns the vocabulary entries contained in text,
// case-insensitively, in vocabulary order. Matching is plain substring
// containment, not word-boundary matching.
func MatchKeywords(text string) []string {
	lowered := strings.ToLower(text)
	found := make([]string, 0, len(Vocabulary))
	for _, kw := range Vocabulary {
		if strings.Contains(lowered, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// MissingKeywords returns the vocabulary entries absent from found, in
// vocabulary order, capped at max entries. A max of zero or less means no
// cap.
func MissingKeywords(found []string, max int) []string {
	present := make(map[string]struct{}, len(found))
	for _, kw := range found {
		present[kw] = struct{}{}
	}
	missing := make([]string, 0, len(Vocabulary))
	for _, kw := range Vocabulary {
		if _, ok := present[kw]; ok {
			continue
		}
		missing = append(missing, kw)
		if max > 0 && len(missing) == max {
			break
		}
	}
	return missing
}
