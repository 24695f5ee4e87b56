package handlers

import (
	"github.com/abrezinsky/triviarooms/internal/models"
)

// RoomResponse is the host's view of a room after create or reset
type RoomResponse struct {
	ID                 string                   `json:"id"`
	Code               string                   `json:"code"`
	Phase              models.Phase             `json:"phase"`
	QuestionCount      int                      `json:"question_count"`
	CountdownSeconds   int                      `json:"countdown_seconds"`
	AnswerSeconds      int                      `json:"answer_seconds"`
	RevealDelaySeconds int                      `json:"reveal_delay_seconds"`
	RevealSeconds      int                      `json:"reveal_seconds"`
	AudioMode          models.AudioMode         `json:"audio_mode"`
	SelectionStrategy  models.SelectionStrategy `json:"selection_strategy"`
	RoundFilter        models.RoundFilter       `json:"round_filter"`
	SelectedPacks      []int64                  `json:"selected_packs"`
	Rounds             []models.PackRound       `json:"rounds,omitempty"`
	TotalQuestions     int                      `json:"total_questions"`
}

func newRoomResponse(room *models.Room) RoomResponse {
	return RoomResponse{
		ID:                 room.ID,
		Code:               room.Code,
		Phase:              room.Phase,
		QuestionCount:      len(room.QuestionIDs),
		CountdownSeconds:   room.CountdownSeconds,
		AnswerSeconds:      room.AnswerSeconds,
		RevealDelaySeconds: room.RevealDelaySeconds,
		RevealSeconds:      room.RevealSeconds,
		AudioMode:          room.AudioMode,
		SelectionStrategy:  room.Strategy,
		RoundFilter:        room.RoundFilter,
		SelectedPacks:      room.SelectedPacks,
		Rounds:             room.Rounds,
		TotalQuestions:     room.TotalQuestions,
	}
}

// JoinResponse is returned to a team that joined a room
type JoinResponse struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	RoomCode string `json:"room_code"`
}

// QuestionCreatedResponse is the response for question creation
type QuestionCreatedResponse struct {
	ID int64 `json:"id"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}
