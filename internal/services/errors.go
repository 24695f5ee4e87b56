package services

import (
	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/repository"
)

// Error codes passed through to clients
const (
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeQuestionNotFound     = "QUESTION_NOT_FOUND"
	CodePackNotFound         = "PACK_NOT_FOUND"
	CodeNameTaken            = "NAME_TAKEN"
	CodeRoomNotInLobby       = "ROOM_NOT_IN_LOBBY"
	CodeNoQuestions          = "NO_QUESTIONS"
	CodePackExists           = "PACK_EXISTS"
	CodeInvalidName          = "INVALID_NAME"
	CodeInvalidTiming        = "INVALID_TIMING"
	CodeInvalidAudioMode     = "INVALID_AUDIO_MODE"
	CodeInvalidQuestion      = "INVALID_QUESTION"
	CodeInvalidPack          = "INVALID_PACK"
	CodeBaseURLNotConfigured = "BASE_URL_NOT_CONFIGURED"
)

// Service errors
var (
	ErrRoomNotFound     = errors.NotFound("room not found").WithCode(CodeRoomNotFound)
	ErrPlayerNotFound   = errors.NotFound("player not found in this room").WithCode(CodePlayerNotFound)
	ErrNameTaken        = errors.Conflict("that name is already taken in this room").WithCode(CodeNameTaken)
	ErrRoomNotInLobby   = errors.Conflict("room is no longer accepting players").WithCode(CodeRoomNotInLobby)
	ErrNoQuestions      = errors.Conflict("room has no questions to play").WithCode(CodeNoQuestions)
	ErrPackExists       = errors.Conflict("a pack with that name already exists").WithCode(CodePackExists)
	ErrBaseURLNotConfig = errors.Validation("base_url not configured").WithCode(CodeBaseURLNotConfigured)
)

// questionNotFound keeps repository.ErrNotFound in the chain so callers of
// the question bank can test for it directly
func questionNotFound() *errors.Error {
	return &errors.Error{
		Kind:    errors.ErrNotFound,
		Code:    CodeQuestionNotFound,
		Message: "question not found",
		Err:     repository.ErrNotFound,
	}
}

func invalidQuestion(format string, args ...any) *errors.Error {
	return errors.Validationf(format, args...).WithCode(CodeInvalidQuestion)
}

// AnswerStatus is the outcome of a submitted answer. Every status is a
// normal result, not an error.
type AnswerStatus string

const (
	AnswerAccepted           AnswerStatus = "accepted"
	AnswerAlreadyAnswered    AnswerStatus = "already_answered"
	AnswerNotCurrentQuestion AnswerStatus = "not_current_question"
	AnswerNotOpen            AnswerStatus = "not_open"
	AnswerNotRunning         AnswerStatus = "not_running"
)
