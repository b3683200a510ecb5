package quiz

import "strings"

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize canonicalizes an answer: ASCII punctuation removed, surrounding
// whitespace trimmed, lowercased. Every comparison in the system happens on
// this form; the raw answer is never stored.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(asciiPunct, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// Score counts responses whose normalized form equals the normalized correct
// answer at the same index. Indexes absent from responses are unscored:
// neither correct nor incorrect.
func Score(responses, correct map[int]string) int {
	score := 0
	for i, answer := range responses {
		if Normalize(answer) == Normalize(correct[i]) {
			score++
		}
	}
	return score
}
