package services

import (
	"context"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/shuffle"
)

// RoomState is what polling clients see of a room
type RoomState struct {
	Code             string           `json:"code"`
	Phase            models.Phase     `json:"phase"`
	Stage            models.Stage     `json:"stage"`
	QuestionIndex    int              `json:"question_index"`
	QuestionCount    int              `json:"question_count"`
	CountdownStartAt *time.Time       `json:"countdown_start_at"`
	OpenAt           *time.Time       `json:"open_at"`
	CloseAt          *time.Time       `json:"close_at"`
	RevealAt         *time.Time       `json:"reveal_at"`
	NextAt           *time.Time       `json:"next_at"`
	ServerTime       time.Time        `json:"server_time"`
	AudioMode        models.AudioMode `json:"audio_mode"`
	Question         *PublicQuestion  `json:"question"`
	Reveal           *Reveal          `json:"reveal,omitempty"`
	Players          []models.Player  `json:"players"`
}

// PublicQuestion is a question as shown while it can still be answered.
// Options are in the room's shuffled order.
type PublicQuestion struct {
	ID         int64             `json:"id"`
	RoundType  models.RoundType  `json:"round_type"`
	AnswerType models.AnswerType `json:"answer_type"`
	Text       string            `json:"text"`
	Options    []string          `json:"options,omitempty"`
	AudioPath  string            `json:"audio_path,omitempty"`
	ImagePath  string            `json:"image_path,omitempty"`
}

// Reveal is the answer to the current question and how the room did
type Reveal struct {
	AnswerIndex            *int     `json:"answer_index,omitempty"`
	AnswerText             string   `json:"answer_text,omitempty"`
	AcceptedAnswers        []string `json:"accepted_answers,omitempty"`
	Explanation            string   `json:"explanation,omitempty"`
	AnsweredCount          int      `json:"answered_count"`
	CorrectCount           int      `json:"correct_count"`
	FirstCorrectPlayerID   string   `json:"first_correct_player_id,omitempty"`
	FirstCorrectPlayerName string   `json:"first_correct_player_name,omitempty"`
}

// State returns the room as polling clients see it. The answer is only
// included once the question has reached its reveal.
func (s *RoomService) State(ctx context.Context, code string) (*RoomState, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	state := &RoomState{
		Code:             room.Code,
		Phase:            room.Phase,
		Stage:            ComputeStage(room, now),
		QuestionIndex:    room.QuestionIndex,
		QuestionCount:    len(room.QuestionIDs),
		CountdownStartAt: room.CountdownStartAt,
		OpenAt:           room.OpenAt,
		CloseAt:          room.CloseAt,
		RevealAt:         room.RevealAt,
		NextAt:           room.NextAt,
		ServerTime:       now,
		AudioMode:        room.AudioMode,
	}

	players, err := s.repo.ListPlayers(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []models.Player{}
	}
	state.Players = players

	if room.Phase == models.PhaseLobby {
		return state, nil
	}
	questionID, ok := room.CurrentQuestionID()
	if !ok {
		return state, nil
	}

	q, err := s.questions.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	public := &PublicQuestion{
		ID:         q.ID,
		RoundType:  q.RoundType,
		AnswerType: q.AnswerType,
		Text:       q.Text,
		AudioPath:  q.AudioPath,
		ImagePath:  q.ImagePath,
	}
	answerIndex := -1
	if q.AnswerType == models.AnswerMCQ && q.AnswerIndex != nil {
		public.Options, answerIndex = shuffle.Shuffle(q.Options, *q.AnswerIndex, room.ID, q.ID)
	}
	state.Question = public

	if !revealed(state) {
		return state, nil
	}

	reveal := &Reveal{
		AnswerText:      q.AnswerText,
		AcceptedAnswers: q.AcceptedAnswers,
		Explanation:     q.Explanation,
	}
	if answerIndex >= 0 {
		reveal.AnswerIndex = &answerIndex
	}

	stats, err := s.repo.GetAnswerStats(ctx, room.ID, q.ID)
	if err != nil {
		return nil, err
	}
	reveal.AnsweredCount = stats.Answered
	reveal.CorrectCount = stats.Correct

	winner, err := s.repo.GetRoundResult(ctx, room.ID, q.ID)
	switch {
	case err == nil:
		reveal.FirstCorrectPlayerID = winner.WinnerPlayerID
		for _, p := range players {
			if p.ID == winner.WinnerPlayerID {
				reveal.FirstCorrectPlayerName = p.Name
				break
			}
		}
	case err != repository.ErrNotFound:
		return nil, err
	}

	state.Reveal = reveal
	return state, nil
}

func revealed(state *RoomState) bool {
	switch state.Stage {
	case models.StageReveal, models.StageNeedsAdvance, models.StageFinished:
		return true
	}
	return false
}
