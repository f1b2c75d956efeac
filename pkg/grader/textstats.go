package grader

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	paragraphSplitter = regexp.MustCompile(`\n\s*\n`)
	sentenceSplitter  = regexp.MustCompile(`[.!?]+`)
)

// Stats summarises the textual shape of a submission.
type Stats struct {
	Words              int
	Sentences          int
	Paragraphs         int
	PunctuationDensity float64
}

// Analyze derives word, sentence and paragraph counts plus punctuation
// density from raw submission text. It never fails: empty or non-textual
// input yields zero counts.
func Analyze(text string) Stats {
	normalized := Normalize(text)
	if normalized == "" {
		return Stats{}
	}

	stats := Stats{
		Words:      len(strings.Fields(normalized)),
		Paragraphs: len(paragraphSplitter.Split(normalized, -1)),
		Sentences:  countSentences(normalized),
	}

	if stats.Words > 0 {
		punctuation := strings.Count(normalized, ".") +
			strings.Count(normalized, ",") +
			strings.Count(normalized, ";")
		stats.PunctuationDensity = float64(punctuation) / float64(stats.Words)
	}

	return stats
}

// Normalize replaces control characters with spaces and trims the result.
// Line breaks are kept so paragraph boundaries survive normalization.
func Normalize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, text)

	return strings.TrimSpace(cleaned)
}

func countSentences(text string) int {
	parts := sentenceSplitter.Split(text, -1)
	// Terminal punctuation produces empty trailing segments; they are not
	// sentences.
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return 1
	}
	return len(parts)
}
