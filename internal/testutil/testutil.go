package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedPack creates a pack with n multiple choice questions whose correct
// option is always index 0. Returns the pack ID and question IDs.
func SeedPack(t *testing.T, repo repository.QuestionRepository, name string, roundType models.RoundType, n int) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	pack := &models.Pack{Name: name, RoundType: roundType}
	if _, err := repo.CreatePack(ctx, pack); err != nil {
		t.Fatalf("failed to seed pack %q: %v", name, err)
	}

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		idx := 0
		q := &models.Question{
			RoundType:   roundType,
			AnswerType:  models.AnswerMCQ,
			Text:        fmt.Sprintf("%s question %d", name, i+1),
			Options:     []string{"Right", "Wrong 1", "Wrong 2", "Wrong 3"},
			AnswerIndex: &idx,
		}
		id, err := repo.CreateQuestion(ctx, q)
		if err != nil {
			t.Fatalf("failed to seed question: %v", err)
		}
		if err := repo.AddQuestionToPack(ctx, pack.ID, id); err != nil {
			t.Fatalf("failed to link question: %v", err)
		}
		ids = append(ids, id)
	}
	return pack.ID, ids
}

// SeedTextQuestion creates a free text question in the given pack
func SeedTextQuestion(t *testing.T, repo repository.QuestionRepository, packID int64, answer string, accepted ...string) int64 {
	t.Helper()
	ctx := context.Background()

	id, err := repo.CreateQuestion(ctx, &models.Question{
		RoundType:       models.RoundGeneral,
		AnswerType:      models.AnswerText,
		Text:            "Type the answer",
		AnswerText:      answer,
		AcceptedAnswers: accepted,
	})
	if err != nil {
		t.Fatalf("failed to seed text question: %v", err)
	}
	if err := repo.AddQuestionToPack(ctx, packID, id); err != nil {
		t.Fatalf("failed to link question: %v", err)
	}
	return id
}
