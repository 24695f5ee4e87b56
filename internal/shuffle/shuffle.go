// Package shuffle produces the per-room option order for multiple choice
// questions. The order is recomputed on demand rather than stored, so every
// caller must get the same permutation for the same room and question.
package shuffle

import (
	"strconv"
	"unicode/utf16"
)

// Shuffle returns a permuted copy of options and the position of the
// original answerIndex within it. Fewer than two options or an out of
// range answerIndex returns an unshuffled copy.
func Shuffle(options []string, answerIndex int, roomID string, questionID int64) ([]string, int) {
	out := make([]string, len(options))
	if len(options) < 2 || answerIndex < 0 || answerIndex >= len(options) {
		copy(out, options)
		return out, answerIndex
	}

	perm := Permutation(len(options), roomID, questionID)
	newIndex := answerIndex
	for pos, orig := range perm {
		out[pos] = options[orig]
		if orig == answerIndex {
			newIndex = pos
		}
	}
	return out, newIndex
}

// Permutation returns the index order for n options: position i shows the
// option originally at perm[i].
func Permutation(n int, roomID string, questionID int64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	next := mulberry32(Seed(roomID, questionID))
	for i := n - 1; i > 0; i-- {
		j := int(next() * float64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Seed hashes "{roomID}:{questionID}" to 32 bits
func Seed(roomID string, questionID int64) uint32 {
	return xmur3(roomID + ":" + strconv.FormatInt(questionID, 10))
}

// xmur3 hashes the UTF-16 code units of s and returns the first value of
// its output sequence
func xmur3(s string) uint32 {
	units := utf16.Encode([]rune(s))
	h := uint32(1779033703) ^ uint32(len(units))
	for _, c := range units {
		h = (h ^ uint32(c)) * 3432918353
		h = h<<13 | h>>19
	}
	h = (h ^ h>>16) * 2246822507
	h = (h ^ h>>13) * 3266489909
	h ^= h >> 16
	return h
}

// mulberry32 returns a generator of floats in [0, 1)
func mulberry32(seed uint32) func() float64 {
	a := seed
	return func() float64 {
		a += 0x6D2B79F5
		t := a
		t = (t ^ t>>15) * (t | 1)
		t ^= t + (t^t>>7)*(t|61)
		return float64(t^t>>14) / 4294967296
	}
}
