package ats

import (
	"reflect"
	"strings"
	"testing"
)

func TestMatchKeywordsVocabularyOrder(t *testing.T) {
	// Text mentions python before javascript; output must follow vocabulary
	// order, not order of appearance.
	text := "Built services in Python, then moved to JavaScript and React."
	found := MatchKeywords(text)
	want := []string{"javascript", "python", "java", "react"}
	if !reflect.DeepEqual(found, want) {
		t.Fatalf("MatchKeywords = %v, want %v", found, want)
	}
}

func TestMatchKeywordsSubstringContainment(t *testing.T) {
	// Matching is substring containment, so "javascript" also yields "java".
	found := MatchKeywords("expert in javascript")
	has := func(kw string) bool {
		for _, f := range found {
			if f == kw {
				return true
			}
		}
		return false
	}
	if !has("javascript") || !has("java") {
		t.Fatalf("expected both java and javascript in %v", found)
	}
}

func TestMatchKeywordsEmptyText(t *testing.T) {
	if found := MatchKeywords(""); len(found) != 0 {
		t.Fatalf("expected no matches on empty text, got %v", found)
	}
}

func TestMissingKeywordsCapAndOrder(t *testing.T) {
	missing := MissingKeywords(nil, 10)
	if len(missing) != 10 {
		t.Fatalf("expected cap of 10, got %d", len(missing))
	}
	if !reflect.DeepEqual(missing, Vocabulary[:10]) {
		t.Fatalf("missing = %v, want first 10 vocabulary entries", missing)
	}
}

func TestMissingKeywordsExcludesFound(t *testing.T) {
	found := MatchKeywords(strings.Join(Vocabulary, " "))
	if len(found) != len(Vocabulary) {
		t.Fatalf("expected full vocabulary match, got %d of %d", len(found), len(Vocabulary))
	}
	if missing := MissingKeywords(found, 10); len(missing) != 0 {
		t.Fatalf("expected no missing keywords, got %v", missing)
	}
}
