package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/abrezinsky/triviarooms/internal/cache"
	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
)

// QuestionService owns the question bank. Question lookups read through
// the cache since questions never change once created.
type QuestionService struct {
	log   logger.Logger
	repo  repository.QuestionRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewQuestionService creates a new QuestionService. A nil cache disables caching.
func NewQuestionService(log logger.Logger, repo repository.QuestionRepository, c cache.Cache, ttl time.Duration) *QuestionService {
	return &QuestionService{log: log, repo: repo, cache: c, ttl: ttl}
}

// PackInput represents a pack for create operations
type PackInput struct {
	Name        string           `json:"name"`
	RoundType   models.RoundType `json:"round_type"`
	Description string           `json:"description"`
	SortOrder   int              `json:"sort_order"`
}

func questionKey(id int64) string {
	return fmt.Sprintf("question:%d", id)
}

// GetQuestionByID returns a full question, answer included
func (s *QuestionService) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	key := questionKey(id)
	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var q models.Question
			if err := json.Unmarshal(data, &q); err == nil {
				return &q, nil
			}
			s.log.Warn("Discarding unreadable cached question", "question_id", id)
		}
		s.log.Debug("Question cache miss", "question_id", id)
	}

	q, err := s.repo.GetQuestion(ctx, id)
	if err == repository.ErrNotFound {
		return nil, questionNotFound()
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(q); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.log.Warn("Failed to cache question", "question_id", id, "error", err)
			}
		}
	}
	return q, nil
}

// ListQuestionsForPacks returns the selectable pool for the given packs
func (s *QuestionService) ListQuestionsForPacks(ctx context.Context, packIDs []int64) ([]models.PoolEntry, error) {
	return s.repo.ListQuestionsForPacks(ctx, packIDs)
}

// ListPacks returns all packs with question counts
func (s *QuestionService) ListPacks(ctx context.Context) ([]models.Pack, error) {
	return s.repo.ListPacks(ctx)
}

// CreatePack creates a new pack
func (s *QuestionService) CreatePack(ctx context.Context, input PackInput) (*models.Pack, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.Validation("pack name is required").WithCode(CodeInvalidPack)
	}
	if input.RoundType == "" {
		input.RoundType = models.RoundGeneral
	}
	if !input.RoundType.Valid() {
		return nil, errors.Validationf("unknown round type %q", input.RoundType).WithCode(CodeInvalidPack)
	}

	pack := &models.Pack{
		Name:        name,
		RoundType:   input.RoundType,
		Description: strings.TrimSpace(input.Description),
		SortOrder:   input.SortOrder,
	}
	if _, err := s.repo.CreatePack(ctx, pack); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrPackExists
		}
		return nil, err
	}

	s.log.Info("Pack created", "pack_id", pack.ID, "name", pack.Name, "round_type", pack.RoundType)
	return pack, nil
}

// EnsurePack returns the pack with the given name, creating it if needed
func (s *QuestionService) EnsurePack(ctx context.Context, name string, roundType models.RoundType) (*models.Pack, error) {
	name = strings.TrimSpace(name)
	pack, err := s.repo.GetPackByName(ctx, name)
	if err == nil {
		return pack, nil
	}
	if err != repository.ErrNotFound {
		return nil, err
	}

	pack, err = s.CreatePack(ctx, PackInput{Name: name, RoundType: roundType})
	if stderrors.Is(err, ErrPackExists) {
		// created concurrently
		return s.repo.GetPackByName(ctx, name)
	}
	return pack, err
}

// CreateQuestion validates and stores a question, then links it to packs
func (s *QuestionService) CreateQuestion(ctx context.Context, q *models.Question, packIDs []int64) (int64, error) {
	if err := ValidateQuestion(q); err != nil {
		return 0, err
	}

	id, err := s.repo.CreateQuestion(ctx, q)
	if err != nil {
		return 0, err
	}

	for _, packID := range packIDs {
		if err := s.repo.AddQuestionToPack(ctx, packID, id); err != nil {
			if err == repository.ErrNotFound {
				return id, errors.NotFoundf("pack %d not found", packID).WithCode(CodePackNotFound)
			}
			return id, err
		}
	}

	s.log.Debug("Question created", "question_id", id, "answer_type", q.AnswerType, "packs", len(packIDs))
	return id, nil
}

// ValidateQuestion normalizes and checks a question before it is stored.
// Multiple choice questions need exactly four options and an answer index
// pointing at one of them; text questions need an answer.
func ValidateQuestion(q *models.Question) error {
	if q == nil {
		return invalidQuestion("question is required")
	}
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return invalidQuestion("question text is required")
	}
	if q.RoundType == "" {
		q.RoundType = models.RoundGeneral
	}
	if !q.RoundType.Valid() {
		return invalidQuestion("unknown round type %q", q.RoundType)
	}

	switch q.AnswerType {
	case models.AnswerMCQ:
		if len(q.Options) != models.MCQOptionCount {
			return invalidQuestion("multiple choice questions need exactly %d options, got %d", models.MCQOptionCount, len(q.Options))
		}
		for i, opt := range q.Options {
			q.Options[i] = strings.TrimSpace(opt)
			if q.Options[i] == "" {
				return invalidQuestion("option %d is empty", i+1)
			}
		}
		if q.AnswerIndex == nil || *q.AnswerIndex < 0 || *q.AnswerIndex >= models.MCQOptionCount {
			return invalidQuestion("answer_index must be between 0 and %d", models.MCQOptionCount-1)
		}
		q.AnswerText = ""
		q.AcceptedAnswers = nil
	case models.AnswerText:
		q.AnswerText = strings.TrimSpace(q.AnswerText)
		if q.AnswerText == "" {
			return invalidQuestion("answer_text is required for text questions")
		}
		q.Options = nil
		q.AnswerIndex = nil
		accepted := q.AcceptedAnswers[:0]
		for _, a := range q.AcceptedAnswers {
			if a = strings.TrimSpace(a); a != "" {
				accepted = append(accepted, a)
			}
		}
		q.AcceptedAnswers = accepted
	default:
		return invalidQuestion("unknown answer type %q", q.AnswerType)
	}
	return nil
}
