// Package evaluator decides whether a submitted answer is correct.
package evaluator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	apperrors "github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/shuffle"
)

// Error codes for malformed evaluations
const (
	CodeMissingOptionIndex = "MISSING_OPTION_INDEX"
	CodeMissingAnswerText  = "MISSING_ANSWER_TEXT"
	CodeBadQuestion        = "BAD_QUESTION"
)

var (
	ErrMissingOptionIndex = apperrors.Validation("option_index is required for multiple choice questions").WithCode(CodeMissingOptionIndex)
	ErrMissingAnswerText  = apperrors.Validation("answer_text is required for text questions").WithCode(CodeMissingAnswerText)
	ErrBadQuestion        = apperrors.Validation("question cannot be evaluated").WithCode(CodeBadQuestion)
)

const minSimilarity = 0.82

// Submission is a player's answer. Exactly one field is expected to be set,
// matching the question's answer type.
type Submission struct {
	OptionIndex *int
	AnswerText  *string
}

// Evaluate reports whether sub answers q correctly. Multiple choice indexes
// refer to the option order shown in roomID.
func Evaluate(q *models.Question, sub Submission, roomID string) (bool, error) {
	if q == nil {
		return false, ErrBadQuestion
	}

	switch q.AnswerType {
	case models.AnswerMCQ:
		if len(q.Options) != models.MCQOptionCount || q.AnswerIndex == nil ||
			*q.AnswerIndex < 0 || *q.AnswerIndex >= len(q.Options) {
			return false, ErrBadQuestion
		}
		if sub.OptionIndex == nil {
			return false, ErrMissingOptionIndex
		}
		_, correct := shuffle.Shuffle(q.Options, *q.AnswerIndex, roomID, q.ID)
		return *sub.OptionIndex == correct, nil

	case models.AnswerText:
		candidates := expectedAnswers(q)
		if len(candidates) == 0 {
			return false, ErrBadQuestion
		}
		if sub.AnswerText == nil || strings.TrimSpace(*sub.AnswerText) == "" {
			return false, ErrMissingAnswerText
		}
		return MatchText(*sub.AnswerText, candidates), nil
	}

	return false, ErrBadQuestion
}

func expectedAnswers(q *models.Question) []string {
	var out []string
	if strings.TrimSpace(q.AnswerText) != "" {
		out = append(out, q.AnswerText)
	}
	for _, a := range q.AcceptedAnswers {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// MatchText reports whether input matches any of the expected answers,
// trying them in order.
func MatchText(input string, expected []string) bool {
	in := Normalize(input)
	if in == "" {
		return false
	}
	for _, e := range expected {
		exp := Normalize(e)
		if exp == "" {
			continue
		}
		if in == exp || matchInitials(in, exp) || matchTokenPrefix(in, exp) || matchEditDistance(in, exp) {
			return true
		}
	}
	return false
}

// matchInitials accepts "lm" for "les miserables" or "jfk" for
// "john f kennedy"
func matchInitials(in, exp string) bool {
	compact := strings.ReplaceAll(in, " ", "")
	n := utf8.RuneCountInString(compact)
	if n < 2 || n > 6 {
		return false
	}
	for _, r := range compact {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}

	var initials strings.Builder
	for _, tok := range tokens(exp) {
		if stopwords[tok] {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		initials.WriteRune(r)
	}
	return initials.String() == compact
}

// matchTokenPrefix accepts inputs whose words are, in order, prefixes of
// the expected answer's words, e.g. "les mis" for "les miserables".
func matchTokenPrefix(in, exp string) bool {
	expected := tokens(exp)
	if len(expected) < 2 {
		return false
	}

	var input []string
	for _, tok := range tokens(in) {
		if utf8.RuneCountInString(tok) >= 2 {
			input = append(input, tok)
		}
	}
	if len(input) < 2 {
		return false
	}

	pos, matched := 0, 0
	for _, tok := range input {
		found := false
		for k := pos; k < len(expected); k++ {
			if strings.HasPrefix(expected[k], tok) {
				pos = k + 1
				matched++
				found = true
				break
			}
		}
		// every other input word must match, but an unmatched stopword is
		// skipped so "the les mis" still matches "les miserables"
		if !found && !stopwords[tok] {
			return false
		}
	}

	coverage := float64(matched) / float64(len(expected))
	return coverage >= 0.6 || matched >= 3
}

func matchEditDistance(in, exp string) bool {
	maxLen := max(utf8.RuneCountInString(in), utf8.RuneCountInString(exp))
	if maxLen <= 4 {
		return false
	}

	d := levenshtein.ComputeDistance(in, exp)
	if d > maxEdits(maxLen) {
		return false
	}
	return 1-float64(d)/float64(maxLen) >= minSimilarity
}

func maxEdits(n int) int {
	switch {
	case n < 8:
		return 1
	case n < 13:
		return 2
	case n < 19:
		return 3
	}
	return 4
}
