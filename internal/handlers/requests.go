package handlers

import (
	"strings"

	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/services"
)

// CreateRoomRequest represents a request to create a room
type CreateRoomRequest struct {
	SelectionStrategy  models.SelectionStrategy `json:"selection_strategy"`
	RoundFilter        models.RoundFilter       `json:"round_filter"`
	SelectedPacks      []int64                  `json:"selected_packs"`
	Rounds             []models.PackRound       `json:"rounds"`
	TotalQuestions     int                      `json:"total_questions"`
	CountdownSeconds   *int                     `json:"countdown_seconds"`
	AnswerSeconds      *int                     `json:"answer_seconds"`
	RevealDelaySeconds *int                     `json:"reveal_delay_seconds"`
	RevealSeconds      *int                     `json:"reveal_seconds"`
	AudioMode          models.AudioMode         `json:"audio_mode"`
}

// Validate checks the fields that never reach the selector
func (r *CreateRoomRequest) Validate() error {
	switch r.SelectionStrategy {
	case "", models.StrategyAllPacks, models.StrategyPerPack:
	default:
		return BadRequest("selection_strategy must be all_packs or per_pack")
	}
	if r.AudioMode != "" && !r.AudioMode.Valid() {
		return BadRequest("audio_mode must be display, phones or both")
	}
	return nil
}

// Input converts the request into service input
func (r *CreateRoomRequest) Input() services.CreateRoomInput {
	return services.CreateRoomInput{
		Policy: models.SelectionPolicy{
			Strategy:       r.SelectionStrategy,
			RoundFilter:    r.RoundFilter,
			SelectedPacks:  r.SelectedPacks,
			Rounds:         r.Rounds,
			TotalQuestions: r.TotalQuestions,
		},
		Timing: services.TimingInput{
			CountdownSeconds:   r.CountdownSeconds,
			AnswerSeconds:      r.AnswerSeconds,
			RevealDelaySeconds: r.RevealDelaySeconds,
			RevealSeconds:      r.RevealSeconds,
		},
		AudioMode: r.AudioMode,
	}
}

// JoinRequest represents a team joining a room
type JoinRequest struct {
	Name string `json:"name"`
}

// Validate rejects blank names before the room is looked up
func (r *JoinRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return BadRequest("name is required")
	}
	return nil
}

// AnswerRequest represents an answer submission
type AnswerRequest struct {
	PlayerID    string  `json:"player_id"`
	QuestionID  int64   `json:"question_id"`
	OptionIndex *int    `json:"option_index"`
	AnswerText  *string `json:"answer_text"`
}

// Validate checks that the submission names a player and a question
func (r *AnswerRequest) Validate() error {
	if r.PlayerID == "" {
		return BadRequest("player_id is required")
	}
	if r.QuestionID <= 0 {
		return BadRequest("question_id is required")
	}
	return nil
}

// LoginRequest exchanges the admin secret for a session cookie
type LoginRequest struct {
	Secret string `json:"secret"`
}

// CreateQuestionRequest represents a request to add a question to the bank
type CreateQuestionRequest struct {
	RoundType       models.RoundType  `json:"round_type"`
	AnswerType      models.AnswerType `json:"answer_type"`
	Text            string            `json:"text"`
	Options         []string          `json:"options"`
	AnswerIndex     *int              `json:"answer_index"`
	AnswerText      string            `json:"answer_text"`
	AcceptedAnswers []string          `json:"accepted_answers"`
	Explanation     string            `json:"explanation"`
	AudioPath       string            `json:"audio_path"`
	ImagePath       string            `json:"image_path"`
	PackIDs         []int64           `json:"pack_ids"`
}

// Question converts the request into a model for validation by the service
func (r *CreateQuestionRequest) Question() *models.Question {
	return &models.Question{
		RoundType:       r.RoundType,
		AnswerType:      r.AnswerType,
		Text:            r.Text,
		Options:         r.Options,
		AnswerIndex:     r.AnswerIndex,
		AnswerText:      r.AnswerText,
		AcceptedAnswers: r.AcceptedAnswers,
		Explanation:     r.Explanation,
		AudioPath:       r.AudioPath,
		ImagePath:       r.ImagePath,
	}
}
