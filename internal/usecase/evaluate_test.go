package usecase

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStringSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "hello world", "hello world", 1},
		{"both empty", "", "", 1},
		{"one empty", "hello", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"partial", "abcd", "abxd", 0.75}, // LCS "abd" -> 2*3/8
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("StringSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStringSimilaritySymmetric(t *testing.T) {
	a, b := "the quick brown fox", "a quick red fox"
	if StringSimilarity(a, b) != StringSimilarity(b, a) {
		t.Error("similarity must be symmetric")
	}
}

func TestAnswerRelevance(t *testing.T) {
	chunks := []string{"completely unrelated text", "the answer is 42"}
	got := AnswerRelevance("the answer is 42", chunks)
	if got != 1 {
		t.Errorf("expected best-chunk score 1, got %v", got)
	}

	if AnswerRelevance("", chunks) != 0 {
		t.Error("empty answer must score 0")
	}
	if AnswerRelevance("anything", nil) != 0 {
		t.Error("no chunks must score 0")
	}
}

func TestCoverageScore(t *testing.T) {
	chunks := []string{"revenue grew by ten percent in 2024"}

	got := CoverageScore("revenue grew sharply", chunks)
	if !almostEqual(got, 0.667) {
		t.Errorf("expected 2/3 tokens covered rounded to 0.667, got %v", got)
	}

	if CoverageScore("", chunks) != 0 {
		t.Error("empty answer must score 0")
	}
	if CoverageScore("revenue", nil) != 0 {
		t.Error("no chunks must score 0")
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	refs := []string{"paris", "the capital is paris", "rome"}

	got := PrecisionRecallF1(refs, "the capital is paris", 0.9)
	if got.Precision != 1 {
		t.Errorf("precision = %v, want 1", got.Precision)
	}
	if !almostEqual(got.Recall, 0.333) {
		t.Errorf("recall = %v, want 0.333", got.Recall)
	}
	if got.F1 <= 0 || got.F1 >= 1 {
		t.Errorf("f1 = %v, want in (0, 1)", got.F1)
	}

	none := PrecisionRecallF1(refs, "completely unrelated", 0.9)
	if none.Precision != 0 || none.Recall != 0 || none.F1 != 0 {
		t.Errorf("no matches must zero all scores, got %+v", none)
	}

	empty := PrecisionRecallF1(nil, "anything", 0.9)
	if empty != (PRF1{}) {
		t.Errorf("empty reference set must return zero value, got %+v", empty)
	}
}

func TestRound3(t *testing.T) {
	if got := Round3(1.0 / 3.0); got != 0.333 {
		t.Errorf("Round3(1/3) = %v", got)
	}
	if got := Round3(0.6666666); got != 0.667 {
		t.Errorf("Round3(2/3) = %v", got)
	}
}
