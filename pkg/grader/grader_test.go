package grader

import (
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testEvaluator() *HeuristicEvaluator {
	return NewHeuristicEvaluator(zerolog.New(io.Discard))
}

func TestEvaluateScoresWithinBounds(t *testing.T) {
	inputs := []struct {
		text   string
		course string
	}{
		{"", ""},
		{"   \n\n  ", "CS101"},
		{"short text", "Databases"},
		{strings.Repeat("networks routing packets. ", 300), "Computer Networks"},
		{"\x00\x01binary\x02garbage", "Operating Systems"},
	}

	for _, input := range inputs {
		result := testEvaluator().Evaluate(input.text, input.course)

		for _, score := range []int{
			result.ContentScore,
			result.GrammarScore,
			result.StructureScore,
			result.OriginalityScore,
			result.TotalScore,
		} {
			require.GreaterOrEqual(t, score, 0)
			require.LessOrEqual(t, score, 100)
		}
		require.GreaterOrEqual(t, result.OriginalityScore, 60)
		require.LessOrEqual(t, result.OriginalityScore, 95)
		require.Contains(t, []string{"A", "B", "C"}, result.Grade)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	text := "Relational databases use indexes. Query planners choose join orders.\n\nTransactions provide isolation."
	course := "Database Systems"

	first := testEvaluator().Evaluate(text, course)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, testEvaluator().Evaluate(text, course))
	}
}

func TestLetterGradeBoundaries(t *testing.T) {
	require.Equal(t, "A", letterGrade(85))
	require.Equal(t, "B", letterGrade(84))
	require.Equal(t, "B", letterGrade(70))
	require.Equal(t, "C", letterGrade(69))
	require.Equal(t, "A", letterGrade(100))
	require.Equal(t, "C", letterGrade(0))
}

func TestEvaluateEmptyTextDefaults(t *testing.T) {
	result := testEvaluator().Evaluate("", "CS101")

	require.Equal(t, 52, result.ContentScore)
	require.Equal(t, 50, result.GrammarScore)
	require.Equal(t, 45, result.StructureScore)
	require.Contains(t, result.Feedback, "0 words")
}

func TestEvaluateTotalScoreUsesRubricWeights(t *testing.T) {
	result := testEvaluator().Evaluate("", "CS101")

	expected := (result.ContentScore*35 +
		result.GrammarScore*25 +
		result.StructureScore*20 +
		result.OriginalityScore*20) / 100
	require.Equal(t, expected, result.TotalScore)
}

func TestContentScoreWordLadderAndKeywordBonus(t *testing.T) {
	longText := strings.Repeat("word ", 700)
	require.Equal(t, 92, contentScore(longText, 700, ""))
	require.Equal(t, 84, contentScore(strings.Repeat("word ", 450), 450, ""))
	require.Equal(t, 74, contentScore(strings.Repeat("word ", 250), 250, ""))
	require.Equal(t, 64, contentScore(strings.Repeat("word ", 120), 120, ""))
	require.Equal(t, 52, contentScore("tiny", 1, ""))

	// Two matching keywords add 6; short tokens are ignored.
	text := "we study compiler construction and parsing techniques"
	require.Equal(t, 52+6, contentScore(text, 7, "Compiler of Parsing"))

	// Bonus caps at 10 even with many matches.
	text = "alpha beta gamma delta epsilon"
	require.Equal(t, 52+10, contentScore(text, 5, "alpha beta gamma delta epsilon"))
}

func TestGrammarScoreTiers(t *testing.T) {
	require.Equal(t, 50, grammarScore(Stats{}))

	// Dense punctuation, in-range sentence length.
	require.Equal(t, 96, grammarScore(Stats{Words: 20, Sentences: 2, PunctuationDensity: 0.2}))
	// Mid punctuation tier, short sentences.
	require.Equal(t, 82, grammarScore(Stats{Words: 8, Sentences: 4, PunctuationDensity: 0.1}))
	// Sparse punctuation, no sentence boundary detected.
	require.Equal(t, 76, grammarScore(Stats{Words: 12, Sentences: 0, PunctuationDensity: 0.01}))
}

func TestStructureScoreTiers(t *testing.T) {
	require.Equal(t, 45, structureScore(Stats{}))
	require.Equal(t, 58, structureScore(Stats{Words: 10, Sentences: 1, Paragraphs: 1}))
	require.Equal(t, 58+10+7, structureScore(Stats{Words: 100, Sentences: 4, Paragraphs: 2}))
	require.Equal(t, 58+18+12+8, structureScore(Stats{Words: 300, Sentences: 9, Paragraphs: 5}))
}

func TestOriginalityScoreStableAndBounded(t *testing.T) {
	a := originalityScore("some text", "CS101")
	b := originalityScore("some text", "CS101")
	require.Equal(t, a, b)
	require.GreaterOrEqual(t, a, 60)
	require.LessOrEqual(t, a, 95)

	// Different course should usually move the hash; at minimum it stays bounded.
	c := originalityScore("some text", "CS102")
	require.GreaterOrEqual(t, c, 60)
	require.LessOrEqual(t, c, 95)
}

func TestFeedbackClauseTiers(t *testing.T) {
	high := buildFeedback(90, 90, 90, 75, 500)
	require.Contains(t, high, "strong topic coverage")
	require.Contains(t, high, "clean grammar")
	require.Contains(t, high, "clear structure")
	require.Contains(t, high, "75/100")
	require.Contains(t, high, "500 words")

	mid := buildFeedback(75, 75, 75, 61, 200)
	require.Contains(t, mid, "adequate relevance")
	require.Contains(t, mid, "minor grammar issues")
	require.Contains(t, mid, "improve transitions")

	low := buildFeedback(50, 50, 50, 60, 10)
	require.Contains(t, low, "limited relevance")
	require.Contains(t, low, "needs revision")
	require.Contains(t, low, "lacks clarity")
}
