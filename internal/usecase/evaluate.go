package usecase

import (
	"math"
	"strings"
)

// Post-hoc scoring of an answer against retrieved evidence. These are
// crude lexical diagnostics, not semantic judgments; they exist so
// responses carry comparable numbers across strategies.

// StringSimilarity returns a similarity ratio in [0, 1] based on the
// longest common subsequence of the two strings: 2*LCS / (len(a)+len(b)).
// Identical strings score 1.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// One-row LCS over runes.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return float64(2*lcs) / float64(len(ra)+len(rb))
}

// AnswerRelevance returns the maximum similarity between the answer and
// any single retrieved chunk, rounded to 3 decimals. A high score means
// the answer closely echoes some chunk; it is a grounding proxy, not
// semantic similarity.
func AnswerRelevance(answer string, chunks []string) float64 {
	if answer == "" || len(chunks) == 0 {
		return 0
	}
	best := 0.0
	for _, chunk := range chunks {
		if s := StringSimilarity(answer, chunk); s > best {
			best = s
		}
	}
	return Round3(best)
}

// CoverageScore returns the fraction of the answer's whitespace-delimited
// tokens that appear as a substring of at least one chunk, rounded to 3
// decimals. An empty answer scores 0.
func CoverageScore(answer string, chunks []string) float64 {
	tokens := strings.Fields(answer)
	if len(tokens) == 0 {
		return 0
	}
	covered := 0
	for _, token := range tokens {
		for _, chunk := range chunks {
			if strings.Contains(chunk, token) {
				covered++
				break
			}
		}
	}
	return Round3(float64(covered) / float64(len(tokens)))
}

// PRF1 holds precision/recall/F1 against a reference answer key.
type PRF1 struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// PrecisionRecallF1 marks each reference answer matched when its
// similarity to the generated answer reaches the threshold, then scores
// treating every reference as a positive. An offline diagnostic against
// a held-out answer key, not part of the query path.
func PrecisionRecallF1(trueAnswers []string, generated string, threshold float64) PRF1 {
	if len(trueAnswers) == 0 {
		return PRF1{}
	}
	matched := 0
	for _, ref := range trueAnswers {
		if StringSimilarity(generated, ref) >= threshold {
			matched++
		}
	}

	// All references are positives, so every match is a true positive
	// and there are no false positives.
	var precision float64
	if matched > 0 {
		precision = 1
	}
	recall := float64(matched) / float64(len(trueAnswers))

	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return PRF1{
		Precision: Round3(precision),
		Recall:    Round3(recall),
		F1:        Round3(f1),
	}
}

// Round3 rounds to 3 decimal places for presentation stability.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
