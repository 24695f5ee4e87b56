package repository

import (
	"context"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// QuestionRepository defines question bank data operations
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q *models.Question) (int64, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	CreatePack(ctx context.Context, p *models.Pack) (int64, error)
	GetPackByName(ctx context.Context, name string) (*models.Pack, error)
	ListPacks(ctx context.Context) ([]models.Pack, error)
	AddQuestionToPack(ctx context.Context, packID, questionID int64) error
	ListQuestionsForPacks(ctx context.Context, packIDs []int64) ([]models.PoolEntry, error)
}

// RoomRepository defines room data operations. The mutating methods are
// conditional and report whether they applied.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	StartRoom(ctx context.Context, roomID string, s models.Schedule, now time.Time) (bool, error)
	AdvanceRoom(ctx context.Context, roomID string, fromIndex int, s models.Schedule, now time.Time) (bool, error)
	FinishRoom(ctx context.Context, roomID string, fromIndex int, now time.Time) (bool, error)
	CloseAnswerWindow(ctx context.Context, roomID string, index int, now, revealAt, nextAt time.Time) (bool, error)
	ResetRoom(ctx context.Context, roomID string, questionIDs []int64, now time.Time) error
	DeleteRoomsIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// PlayerRepository defines player data operations
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, p *models.Player) error
	GetPlayer(ctx context.Context, roomID, playerID string) (*models.Player, error)
	ListPlayers(ctx context.Context, roomID string) ([]models.Player, error)
	CountPlayers(ctx context.Context, roomID string) (int, error)
}

// AnswerRepository defines answer data operations
type AnswerRepository interface {
	RecordAnswer(ctx context.Context, a *models.Answer, index int) error
	CountAnsweredPlayers(ctx context.Context, roomID string, questionID int64) (int, error)
	GetAnswerStats(ctx context.Context, roomID string, questionID int64) (models.AnswerStats, error)
	GetRoundResult(ctx context.Context, roomID string, questionID int64) (*models.RoundResult, error)
}

// GameRepository is everything the room engine needs
type GameRepository interface {
	RoomRepository
	PlayerRepository
	AnswerRepository
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	QuestionRepository
	GameRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
