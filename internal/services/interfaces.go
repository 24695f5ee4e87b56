package services

import (
	"context"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// QuestionBank is the read side of the question store used by rooms
type QuestionBank interface {
	GetQuestionByID(ctx context.Context, id int64) (*models.Question, error)
	ListQuestionsForPacks(ctx context.Context, packIDs []int64) ([]models.PoolEntry, error)
}

// QuestionServicer defines the interface for question bank operations
type QuestionServicer interface {
	QuestionBank
	ListPacks(ctx context.Context) ([]models.Pack, error)
	CreatePack(ctx context.Context, pack PackInput) (*models.Pack, error)
	EnsurePack(ctx context.Context, name string, roundType models.RoundType) (*models.Pack, error)
	CreateQuestion(ctx context.Context, q *models.Question, packIDs []int64) (int64, error)
}

// RoomServicer defines the interface for room operations
type RoomServicer interface {
	CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error)
	Join(ctx context.Context, code, name string) (*models.Player, error)
	Start(ctx context.Context, code string) (*StartResult, error)
	Advance(ctx context.Context, code string) (*AdvanceResult, error)
	ForceClose(ctx context.Context, code string) (*ForceCloseResult, error)
	RecordAnswer(ctx context.Context, input AnswerInput) (*AnswerResult, error)
	Reset(ctx context.Context, code string) (*models.Room, error)
	State(ctx context.Context, code string) (*RoomState, error)
	JoinQRCode(ctx context.Context, code string) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ QuestionServicer = (*QuestionService)(nil)
	_ RoomServicer     = (*RoomService)(nil)
)
