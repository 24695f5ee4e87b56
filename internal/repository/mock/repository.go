package mock

import (
	"context"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.RecordAnswerError = errors.New("database error")
//	svc := services.NewRoomService(log, mockRepo, questions, clock)
//	_, err := svc.RecordAnswer(ctx, input)
//	// err now wraps the injected error
type Repository struct {
	repository.FullRepository

	// ===== Question Errors =====
	CreateQuestionError        error
	GetQuestionError           error
	CreatePackError            error
	GetPackByNameError         error
	ListPacksError             error
	AddQuestionToPackError     error
	ListQuestionsForPacksError error

	// ===== Room Errors =====
	CreateRoomError           error
	GetRoomByCodeError        error
	StartRoomError            error
	AdvanceRoomError          error
	FinishRoomError           error
	CloseAnswerWindowError    error
	ResetRoomError            error
	DeleteRoomsIdleSinceError error

	// ===== Player Errors =====
	CreatePlayerError error
	GetPlayerError    error
	ListPlayersError  error
	CountPlayersError error

	// ===== Answer Errors =====
	RecordAnswerError         error
	CountAnsweredPlayersError error
	GetAnswerStatsError       error
	GetRoundResultError       error

	// GetQuestionCalls counts lookups that reached the wrapped repository
	GetQuestionCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Question Methods =====

func (m *Repository) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if m.CreateQuestionError != nil {
		return 0, m.CreateQuestionError
	}
	return m.FullRepository.CreateQuestion(ctx, q)
}

func (m *Repository) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	if m.GetQuestionError != nil {
		return nil, m.GetQuestionError
	}
	m.GetQuestionCalls++
	return m.FullRepository.GetQuestion(ctx, id)
}

func (m *Repository) CreatePack(ctx context.Context, p *models.Pack) (int64, error) {
	if m.CreatePackError != nil {
		return 0, m.CreatePackError
	}
	return m.FullRepository.CreatePack(ctx, p)
}

func (m *Repository) GetPackByName(ctx context.Context, name string) (*models.Pack, error) {
	if m.GetPackByNameError != nil {
		return nil, m.GetPackByNameError
	}
	return m.FullRepository.GetPackByName(ctx, name)
}

func (m *Repository) ListPacks(ctx context.Context) ([]models.Pack, error) {
	if m.ListPacksError != nil {
		return nil, m.ListPacksError
	}
	return m.FullRepository.ListPacks(ctx)
}

func (m *Repository) AddQuestionToPack(ctx context.Context, packID, questionID int64) error {
	if m.AddQuestionToPackError != nil {
		return m.AddQuestionToPackError
	}
	return m.FullRepository.AddQuestionToPack(ctx, packID, questionID)
}

func (m *Repository) ListQuestionsForPacks(ctx context.Context, packIDs []int64) ([]models.PoolEntry, error) {
	if m.ListQuestionsForPacksError != nil {
		return nil, m.ListQuestionsForPacksError
	}
	return m.FullRepository.ListQuestionsForPacks(ctx, packIDs)
}

// ===== Room Methods =====

func (m *Repository) CreateRoom(ctx context.Context, room *models.Room) error {
	if m.CreateRoomError != nil {
		return m.CreateRoomError
	}
	return m.FullRepository.CreateRoom(ctx, room)
}

func (m *Repository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	if m.GetRoomByCodeError != nil {
		return nil, m.GetRoomByCodeError
	}
	return m.FullRepository.GetRoomByCode(ctx, code)
}

func (m *Repository) StartRoom(ctx context.Context, roomID string, s models.Schedule, now time.Time) (bool, error) {
	if m.StartRoomError != nil {
		return false, m.StartRoomError
	}
	return m.FullRepository.StartRoom(ctx, roomID, s, now)
}

func (m *Repository) AdvanceRoom(ctx context.Context, roomID string, fromIndex int, s models.Schedule, now time.Time) (bool, error) {
	if m.AdvanceRoomError != nil {
		return false, m.AdvanceRoomError
	}
	return m.FullRepository.AdvanceRoom(ctx, roomID, fromIndex, s, now)
}

func (m *Repository) FinishRoom(ctx context.Context, roomID string, fromIndex int, now time.Time) (bool, error) {
	if m.FinishRoomError != nil {
		return false, m.FinishRoomError
	}
	return m.FullRepository.FinishRoom(ctx, roomID, fromIndex, now)
}

func (m *Repository) CloseAnswerWindow(ctx context.Context, roomID string, index int, now, revealAt, nextAt time.Time) (bool, error) {
	if m.CloseAnswerWindowError != nil {
		return false, m.CloseAnswerWindowError
	}
	return m.FullRepository.CloseAnswerWindow(ctx, roomID, index, now, revealAt, nextAt)
}

func (m *Repository) ResetRoom(ctx context.Context, roomID string, questionIDs []int64, now time.Time) error {
	if m.ResetRoomError != nil {
		return m.ResetRoomError
	}
	return m.FullRepository.ResetRoom(ctx, roomID, questionIDs, now)
}

func (m *Repository) DeleteRoomsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteRoomsIdleSinceError != nil {
		return 0, m.DeleteRoomsIdleSinceError
	}
	return m.FullRepository.DeleteRoomsIdleSince(ctx, cutoff)
}

// ===== Player Methods =====

func (m *Repository) CreatePlayer(ctx context.Context, p *models.Player) error {
	if m.CreatePlayerError != nil {
		return m.CreatePlayerError
	}
	return m.FullRepository.CreatePlayer(ctx, p)
}

func (m *Repository) GetPlayer(ctx context.Context, roomID, playerID string) (*models.Player, error) {
	if m.GetPlayerError != nil {
		return nil, m.GetPlayerError
	}
	return m.FullRepository.GetPlayer(ctx, roomID, playerID)
}

func (m *Repository) ListPlayers(ctx context.Context, roomID string) ([]models.Player, error) {
	if m.ListPlayersError != nil {
		return nil, m.ListPlayersError
	}
	return m.FullRepository.ListPlayers(ctx, roomID)
}

func (m *Repository) CountPlayers(ctx context.Context, roomID string) (int, error) {
	if m.CountPlayersError != nil {
		return 0, m.CountPlayersError
	}
	return m.FullRepository.CountPlayers(ctx, roomID)
}

// ===== Answer Methods =====

func (m *Repository) RecordAnswer(ctx context.Context, a *models.Answer, index int) error {
	if m.RecordAnswerError != nil {
		return m.RecordAnswerError
	}
	return m.FullRepository.RecordAnswer(ctx, a, index)
}

func (m *Repository) CountAnsweredPlayers(ctx context.Context, roomID string, questionID int64) (int, error) {
	if m.CountAnsweredPlayersError != nil {
		return 0, m.CountAnsweredPlayersError
	}
	return m.FullRepository.CountAnsweredPlayers(ctx, roomID, questionID)
}

func (m *Repository) GetAnswerStats(ctx context.Context, roomID string, questionID int64) (models.AnswerStats, error) {
	if m.GetAnswerStatsError != nil {
		return models.AnswerStats{}, m.GetAnswerStatsError
	}
	return m.FullRepository.GetAnswerStats(ctx, roomID, questionID)
}

func (m *Repository) GetRoundResult(ctx context.Context, roomID string, questionID int64) (*models.RoundResult, error) {
	if m.GetRoundResultError != nil {
		return nil, m.GetRoundResultError
	}
	return m.FullRepository.GetRoundResult(ctx, roomID, questionID)
}

var _ repository.FullRepository = (*Repository)(nil)
