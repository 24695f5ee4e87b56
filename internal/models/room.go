package models

import "time"

// Phase is the persisted lifecycle state of a room
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRunning  Phase = "running"
	PhaseFinished Phase = "finished"
)

// Stage is the time-derived sub-state of a room. Only the first five
// values occur while running; lobby and finished mirror the phase.
type Stage string

const (
	StageCountdown    Stage = "countdown"
	StageOpen         Stage = "open"
	StageWait         Stage = "wait"
	StageReveal       Stage = "reveal"
	StageNeedsAdvance Stage = "needs_advance"
	StageLobby        Stage = "lobby"
	StageFinished     Stage = "finished"
)

// AudioMode controls where audio rounds are played
type AudioMode string

const (
	AudioDisplay AudioMode = "display"
	AudioPhones  AudioMode = "phones"
	AudioBoth    AudioMode = "both"
)

// Valid reports whether the audio mode is known
func (a AudioMode) Valid() bool {
	switch a {
	case AudioDisplay, AudioPhones, AudioBoth:
		return true
	}
	return false
}

// SelectionStrategy decides how questions are drawn from the chosen packs
type SelectionStrategy string

const (
	StrategyAllPacks SelectionStrategy = "all_packs"
	StrategyPerPack  SelectionStrategy = "per_pack"
)

// RoundFilter restricts the pool by round type before drawing
type RoundFilter string

const (
	FilterMixed         RoundFilter = "mixed"
	FilterNoAudio       RoundFilter = "no_audio"
	FilterNoImage       RoundFilter = "no_image"
	FilterAudioOnly     RoundFilter = "audio_only"
	FilterPictureOnly   RoundFilter = "picture_only"
	FilterAudioAndImage RoundFilter = "audio_and_image"
)

// PackRound is the number of questions requested from one pack
type PackRound struct {
	PackID int64 `json:"pack_id"`
	Count  int   `json:"count"`
}

// SelectionPolicy holds everything needed to reproduce a room's question list
type SelectionPolicy struct {
	Strategy       SelectionStrategy `json:"selection_strategy"`
	RoundFilter    RoundFilter       `json:"round_filter"`
	SelectedPacks  []int64           `json:"selected_packs"`
	Rounds         []PackRound       `json:"rounds,omitempty"`
	TotalQuestions int               `json:"total_questions"`
}

// PackIDs returns the packs whose questions form the pool for this policy
func (p SelectionPolicy) PackIDs() []int64 {
	if p.Strategy != StrategyPerPack {
		return p.SelectedPacks
	}
	ids := make([]int64, 0, len(p.Rounds))
	for _, r := range p.Rounds {
		ids = append(ids, r.PackID)
	}
	return ids
}

// Timing holds per-room durations in seconds
type Timing struct {
	CountdownSeconds   int `json:"countdown_seconds"`
	AnswerSeconds      int `json:"answer_seconds"`
	RevealDelaySeconds int `json:"reveal_delay_seconds"`
	RevealSeconds      int `json:"reveal_seconds"`
}

// Schedule is the set of timestamps governing one question
type Schedule struct {
	CountdownStartAt time.Time
	OpenAt           time.Time
	CloseAt          time.Time
	RevealAt         time.Time
	NextAt           time.Time
}

// ScheduleFrom lays out a full question cycle starting at now
func (t Timing) ScheduleFrom(now time.Time) Schedule {
	openAt := now.Add(seconds(t.CountdownSeconds))
	closeAt := openAt.Add(seconds(t.AnswerSeconds))
	revealAt := closeAt.Add(seconds(t.RevealDelaySeconds))
	return Schedule{
		CountdownStartAt: now,
		OpenAt:           openAt,
		CloseAt:          closeAt,
		RevealAt:         revealAt,
		NextAt:           revealAt.Add(seconds(t.RevealSeconds)),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Room is a single game
type Room struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Phase         Phase   `json:"phase"`
	QuestionIDs   []int64 `json:"question_ids"`
	QuestionIndex int     `json:"question_index"`
	Timing
	CountdownStartAt *time.Time `json:"countdown_start_at"`
	OpenAt           *time.Time `json:"open_at"`
	CloseAt          *time.Time `json:"close_at"`
	RevealAt         *time.Time `json:"reveal_at"`
	NextAt           *time.Time `json:"next_at"`
	AudioMode        AudioMode  `json:"audio_mode"`
	SelectionPolicy
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CurrentQuestionID returns the question at the cursor, if any
func (r *Room) CurrentQuestionID() (int64, bool) {
	if r.QuestionIndex < 0 || r.QuestionIndex >= len(r.QuestionIDs) {
		return 0, false
	}
	return r.QuestionIDs[r.QuestionIndex], true
}

// Player is a team that joined a room
type Player struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"room_id"`
	Name     string    `json:"name"`
	NameKey  string    `json:"-"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// Answer is a player's single submission for a question
type Answer struct {
	RoomID      string    `json:"room_id"`
	PlayerID    string    `json:"player_id"`
	QuestionID  int64     `json:"question_id"`
	OptionIndex *int      `json:"option_index,omitempty"`
	AnswerText  *string   `json:"answer_text,omitempty"`
	IsCorrect   bool      `json:"is_correct"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoundResult marks the first correct answer for a question in a room
type RoundResult struct {
	RoomID           string    `json:"room_id"`
	QuestionID       int64     `json:"question_id"`
	WinnerPlayerID   string    `json:"winner_player_id"`
	WinnerReceivedAt time.Time `json:"winner_received_at"`
}

// AnswerStats summarises the answers given for one question
type AnswerStats struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}
