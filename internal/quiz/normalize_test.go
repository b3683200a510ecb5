package quiz_test

import (
	"testing"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{" Yes! ", "yes"},
		{"yes", "yes"},
		{"Paris!", "paris"},
		{"  VERDADEIRO.  ", "verdadeiro"},
		{"don't", "dont"},
		{"", ""},
		{"?!.,;", ""},
	}
	for _, c := range cases {
		if got := quiz.Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestScore(t *testing.T) {
	correct := map[int]string{0: "paris", 1: "true"}
	responses := map[int]string{0: "Paris!", 1: "false"}
	if got := quiz.Score(responses, correct); got != 1 {
		t.Fatalf("Score = %d, want 1", got)
	}
}

func TestScoreSkipsUnanswered(t *testing.T) {
	correct := map[int]string{0: "a", 1: "b", 2: "c"}
	responses := map[int]string{2: "C"}
	if got := quiz.Score(responses, correct); got != 1 {
		t.Fatalf("Score = %d, want 1", got)
	}
}
