package grader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyAndBlankInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\r\n", "\x00\x01\x02"} {
		stats := Analyze(text)
		require.Equal(t, Stats{}, stats)
	}
}

func TestAnalyzeCountsWordsSentencesParagraphs(t *testing.T) {
	text := "First sentence here. Second sentence follows!\n\nNew paragraph starts. It has two sentences?"

	stats := Analyze(text)
	require.Equal(t, 13, stats.Words)
	require.Equal(t, 4, stats.Sentences)
	require.Equal(t, 2, stats.Paragraphs)
}

func TestAnalyzeParagraphsSeparatedByWhitespaceOnlyLines(t *testing.T) {
	text := "one block\n \t \nsecond block\n\n\nthird block"

	stats := Analyze(text)
	require.Equal(t, 3, stats.Paragraphs)
}

func TestAnalyzePunctuationDensity(t *testing.T) {
	// 3 counted marks (.,;) over 6 words.
	stats := Analyze("alpha beta, gamma; delta epsilon zeta.")
	require.Equal(t, 6, stats.Words)
	require.InDelta(t, 0.5, stats.PunctuationDensity, 1e-9)
}

func TestAnalyzeControlCharactersBecomeSpaces(t *testing.T) {
	stats := Analyze("alpha\x00beta\x07gamma")
	require.Equal(t, 3, stats.Words)
}

func TestAnalyzeTerminalPunctuationDoesNotAddSentence(t *testing.T) {
	require.Equal(t, 1, Analyze("only one sentence.").Sentences)
	require.Equal(t, 1, Analyze("no terminal punctuation").Sentences)
	require.Equal(t, 2, Analyze("one. two.").Sentences)
}
