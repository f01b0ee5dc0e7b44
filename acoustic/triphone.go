package acoustic

import (
	"fmt"
	"strings"
)

// Triphone represents a context-dependent phoneme in "left-center+right" format.
// Word boundaries are represented by "#".
// Example: for word [i, k, u] → triphones are "#-i+k", "i-k+u", "k-u+#".
type Triphone string

// WordBoundary is the context symbol for word edges.
const WordBoundary = "#"

// MakeTriphone constructs a triphone string from its components.
func MakeTriphone(left, center, right string) Triphone {
	return Triphone(fmt.Sprintf("%s-%s+%s", left, center, right))
}

// Parts splits the triphone into its left, center and right phones.
// A string without "-" and "+" is treated as a monophone with boundary
// contexts on both sides.
func (t Triphone) Parts() (left, center, right string) {
	s := string(t)
	dash := strings.IndexByte(s, '-')
	plus := strings.LastIndexByte(s, '+')
	if dash < 0 || plus <= dash {
		return WordBoundary, s, WordBoundary
	}
	return s[:dash], s[dash+1 : plus], s[plus+1:]
}

// CenterPhoneme extracts the center (base) phoneme from a triphone.
// For "i-k+u", returns Phoneme("k").
func (t Triphone) CenterPhoneme() Phoneme {
	_, c, _ := t.Parts()
	return Phoneme(c)
}

// WordToTriphones converts a word's monophone sequence to word-internal triphones.
// Uses "#" for word boundary context.
// Example: [i, k, u] → [#-i+k, i-k+u, k-u+#]
// Single phoneme: [a] → [#-a+#]
func WordToTriphones(phonemes []Phoneme) []Triphone {
	n := len(phonemes)
	if n == 0 {
		return nil
	}
	triphones := make([]Triphone, n)
	for i, p := range phonemes {
		left, right := WordBoundary, WordBoundary
		if i > 0 {
			left = string(phonemes[i-1])
		}
		if i < n-1 {
			right = string(phonemes[i+1])
		}
		triphones[i] = MakeTriphone(left, string(p), right)
	}
	return triphones
}
