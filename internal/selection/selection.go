// Package selection draws a room's ordered question list from a pool of
// candidate questions according to a stored selection policy.
package selection

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// Selection error codes
const (
	CodeInvalidInput                 = "INVALID_INPUT"
	CodeInsufficientQuestions        = "INSUFFICIENT_QUESTIONS"
	CodeInsufficientQuestionsPerPack = "INSUFFICIENT_QUESTIONS_PER_PACK"
)

// SelectionError reports why a question list could not be drawn. Details
// carries the numbers a client needs to explain the failure.
type SelectionError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) *SelectionError {
	return &SelectionError{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Rand is the source of randomness used for drawing
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the math/rand/v2 global generator
var DefaultRand Rand = globalRand{}

// Select returns the question IDs for a room in play order. The pool holds
// one entry per (question, pack) link. A nil rng uses DefaultRand.
func Select(policy models.SelectionPolicy, pool []models.PoolEntry, rng Rand) ([]int64, error) {
	if rng == nil {
		rng = DefaultRand
	}

	filtered, err := applyFilter(policy.RoundFilter, pool)
	if err != nil {
		return nil, err
	}

	var ids []int64
	switch policy.Strategy {
	case models.StrategyAllPacks:
		ids, err = selectAll(policy.TotalQuestions, filtered, rng)
	case models.StrategyPerPack:
		ids, err = selectPerPack(policy.Rounds, filtered, rng)
	default:
		return nil, invalid("unknown selection strategy %q", policy.Strategy)
	}
	if err != nil {
		return nil, err
	}

	shuffle(ids, rng)
	return ids, nil
}

// keepRound reports whether a round type passes the filter
func keepRound(filter models.RoundFilter, rt models.RoundType) (bool, error) {
	switch filter {
	case "", models.FilterMixed:
		return true, nil
	case models.FilterNoAudio:
		return rt != models.RoundAudio, nil
	case models.FilterNoImage:
		return rt != models.RoundPicture, nil
	case models.FilterAudioOnly:
		return rt == models.RoundAudio, nil
	case models.FilterPictureOnly:
		return rt == models.RoundPicture, nil
	case models.FilterAudioAndImage:
		return rt == models.RoundAudio || rt == models.RoundPicture, nil
	}
	return false, invalid("unknown round filter %q", filter)
}

func applyFilter(filter models.RoundFilter, pool []models.PoolEntry) ([]models.PoolEntry, error) {
	if _, err := keepRound(filter, models.RoundGeneral); err != nil {
		return nil, err
	}
	out := make([]models.PoolEntry, 0, len(pool))
	for _, e := range pool {
		if ok, _ := keepRound(filter, e.RoundType); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func selectAll(total int, pool []models.PoolEntry, rng Rand) ([]int64, error) {
	if total <= 0 {
		return nil, invalid("total_questions must be positive, got %d", total)
	}
	if len(pool) < total {
		return nil, &SelectionError{
			Code:    CodeInsufficientQuestions,
			Message: fmt.Sprintf("requested %d questions but only %d are available", total, len(pool)),
			Details: map[string]any{"requested": total, "available": len(pool)},
		}
	}

	ids := make([]int64, len(pool))
	for i, e := range pool {
		ids[i] = e.QuestionID
	}
	return draw(ids, total, rng), nil
}

func selectPerPack(rounds []models.PackRound, pool []models.PoolEntry, rng Rand) ([]int64, error) {
	sum := 0
	seen := make(map[int64]bool, len(rounds))
	for _, r := range rounds {
		if r.Count < 0 {
			return nil, invalid("count for pack %d must not be negative", r.PackID)
		}
		if seen[r.PackID] {
			return nil, invalid("pack %d is listed more than once", r.PackID)
		}
		seen[r.PackID] = true
		sum += r.Count
	}
	if sum <= 0 {
		return nil, invalid("at least one pack must request questions")
	}

	byPack := make(map[int64][]int64)
	for _, e := range pool {
		byPack[e.PackID] = append(byPack[e.PackID], e.QuestionID)
	}

	ids := make([]int64, 0, sum)
	for _, r := range rounds {
		if r.Count == 0 {
			continue
		}
		candidates := byPack[r.PackID]
		if len(candidates) < r.Count {
			return nil, &SelectionError{
				Code: CodeInsufficientQuestionsPerPack,
				Message: fmt.Sprintf("pack %d: requested %d questions but only %d are available",
					r.PackID, r.Count, len(candidates)),
				Details: map[string]any{"pack_id": r.PackID, "requested": r.Count, "available": len(candidates)},
			}
		}
		ids = append(ids, draw(candidates, r.Count, rng)...)
	}
	return ids, nil
}

// draw picks k items uniformly without replacement using a partial
// Fisher-Yates over a copy of ids
func draw(ids []int64, k int, rng Rand) []int64 {
	work := append([]int64(nil), ids...)
	// a stable starting order keeps seeded draws reproducible
	slices.Sort(work)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:k]
}

func shuffle(ids []int64, rng Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}
