package models

import "time"

// RoundType is the modality of a question
type RoundType string

const (
	RoundGeneral RoundType = "general"
	RoundAudio   RoundType = "audio"
	RoundPicture RoundType = "picture"
)

// Valid reports whether the round type is known
func (r RoundType) Valid() bool {
	switch r {
	case RoundGeneral, RoundAudio, RoundPicture:
		return true
	}
	return false
}

// AnswerType is how a question is answered
type AnswerType string

const (
	AnswerMCQ  AnswerType = "mcq"
	AnswerText AnswerType = "text"
)

// MCQOptionCount is the number of options every multiple-choice question carries
const MCQOptionCount = 4

// Question is a single trivia question from the bank
type Question struct {
	ID              int64      `json:"id"`
	RoundType       RoundType  `json:"round_type"`
	AnswerType      AnswerType `json:"answer_type"`
	Text            string     `json:"text"`
	Options         []string   `json:"options,omitempty"`      // mcq only
	AnswerIndex     *int       `json:"answer_index,omitempty"` // mcq only
	AnswerText      string     `json:"answer_text,omitempty"`  // text only
	AcceptedAnswers []string   `json:"accepted_answers,omitempty"`
	Explanation     string     `json:"explanation,omitempty"`
	AudioPath       string     `json:"audio_path,omitempty"`
	ImagePath       string     `json:"image_path,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Pack groups questions for selection
type Pack struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	RoundType     RoundType `json:"round_type"`
	Description   string    `json:"description,omitempty"`
	SortOrder     int       `json:"sort_order"`
	QuestionCount int       `json:"question_count"`
}

// PoolEntry is one selectable (question, pack) pair
type PoolEntry struct {
	QuestionID int64     `json:"question_id"`
	PackID     int64     `json:"pack_id"`
	RoundType  RoundType `json:"round_type"`
}
