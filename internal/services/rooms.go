package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/microcosm-cc/bluemonday"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/evaluator"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/selection"
)

const (
	codeChars       = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 5
	maxCodeAttempts = 10
	maxNameLength   = 24
	maxPhaseSeconds = 3600
)

// DefaultTiming is used for any duration a create request leaves out
var DefaultTiming = models.Timing{
	CountdownSeconds:   5,
	AnswerSeconds:      20,
	RevealDelaySeconds: 1,
	RevealSeconds:      8,
}

// RoomService runs the room lifecycle. Phases only move when a client calls
// in; every mutation is a conditional write against the stored row, so
// concurrent callers racing on the same step are harmless.
type RoomService struct {
	log        logger.Logger
	repo       repository.GameRepository
	questions  QuestionBank
	clock      clockwork.Clock
	randReader io.Reader      // for testing: defaults to crypto/rand.Reader
	rng        selection.Rand // for testing: defaults to selection.DefaultRand
	defaults   models.Timing
	baseURL    string
	names      *bluemonday.Policy
}

// NewRoomService creates a new RoomService
func NewRoomService(log logger.Logger, repo repository.GameRepository, questions QuestionBank, clock clockwork.Clock) *RoomService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomService{
		log:        log,
		repo:       repo,
		questions:  questions,
		clock:      clock,
		randReader: rand.Reader,
		rng:        selection.DefaultRand,
		defaults:   DefaultTiming,
		names:      bluemonday.StrictPolicy(),
	}
}

// SetRandReader sets a custom random reader for room codes (for testing)
func (s *RoomService) SetRandReader(reader io.Reader) {
	s.randReader = reader
}

// SetRand sets the random source used for question selection (for testing)
func (s *RoomService) SetRand(rng selection.Rand) {
	s.rng = rng
}

// SetDefaultTiming sets the durations used when a create request omits them
func (s *RoomService) SetDefaultTiming(t models.Timing) {
	s.defaults = t
}

// SetBaseURL sets the public URL used in join QR codes
func (s *RoomService) SetBaseURL(baseURL string) {
	s.baseURL = strings.TrimSuffix(baseURL, "/")
}

// TimingInput holds optional per-room durations in seconds
type TimingInput struct {
	CountdownSeconds   *int `json:"countdown_seconds"`
	AnswerSeconds      *int `json:"answer_seconds"`
	RevealDelaySeconds *int `json:"reveal_delay_seconds"`
	RevealSeconds      *int `json:"reveal_seconds"`
}

// CreateRoomInput represents a room for create operations
type CreateRoomInput struct {
	Policy    models.SelectionPolicy
	Timing    TimingInput
	AudioMode models.AudioMode
}

// StartResult reports whether a start call moved the room out of the lobby
type StartResult struct {
	Started bool `json:"started"`
}

// AdvanceResult reports what an advance call did
type AdvanceResult struct {
	Advanced bool `json:"advanced"`
	Finished bool `json:"finished"`
}

// ForceCloseResult reports whether the answer window was closed
type ForceCloseResult struct {
	Forced bool `json:"forced"`
}

// AnswerInput is a submitted answer
type AnswerInput struct {
	Code        string
	PlayerID    string
	QuestionID  int64
	OptionIndex *int
	AnswerText  *string
}

// AnswerResult contains the outcome of an answer submission
type AnswerResult struct {
	Status      AnswerStatus `json:"status"`
	IsCorrect   bool         `json:"is_correct"`
	ClosedEarly bool         `json:"closed_early"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *RoomService) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *RoomService) getRoom(ctx context.Context, code string) (*models.Room, error) {
	room, err := s.repo.GetRoomByCode(ctx, normalizeCode(code))
	if err == repository.ErrNotFound {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// CreateRoom selects the room's questions and stores it in the lobby under
// a fresh join code
func (s *RoomService) CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error) {
	timing, err := s.resolveTiming(input.Timing)
	if err != nil {
		return nil, err
	}

	audioMode := input.AudioMode
	if audioMode == "" {
		audioMode = models.AudioDisplay
	}
	if !audioMode.Valid() {
		return nil, errors.Validationf("unknown audio mode %q", audioMode).WithCode(CodeInvalidAudioMode)
	}

	policy := normalizePolicy(input.Policy)
	questionIDs, err := s.selectQuestions(ctx, policy)
	if err != nil {
		return nil, err
	}

	now := s.now()
	room := &models.Room{
		ID:              uuid.NewString(),
		Phase:           models.PhaseLobby,
		QuestionIDs:     questionIDs,
		Timing:          timing,
		AudioMode:       audioMode,
		SelectionPolicy: policy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}
		room.Code = code

		err = s.repo.CreateRoom(ctx, room)
		if err == nil {
			s.log.Info("Room created", "room_id", room.ID, "code", room.Code,
				"questions", len(room.QuestionIDs), "strategy", policy.Strategy)
			return room, nil
		}
		if err != repository.ErrDuplicate {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		s.log.Debug("Room code already in use, retrying", "code", code, "attempt", i+1)
	}

	return nil, fmt.Errorf("failed to generate unique room code after %d attempts", maxCodeAttempts)
}

func (s *RoomService) generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := io.ReadFull(s.randReader, buf); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeChars[int(b)%len(codeChars)]
	}
	return string(buf), nil
}

func (s *RoomService) resolveTiming(in TimingInput) (models.Timing, error) {
	t := s.defaults
	if in.CountdownSeconds != nil {
		t.CountdownSeconds = *in.CountdownSeconds
	}
	if in.AnswerSeconds != nil {
		t.AnswerSeconds = *in.AnswerSeconds
	}
	if in.RevealDelaySeconds != nil {
		t.RevealDelaySeconds = *in.RevealDelaySeconds
	}
	if in.RevealSeconds != nil {
		t.RevealSeconds = *in.RevealSeconds
	}

	if t.AnswerSeconds < 1 || t.AnswerSeconds > maxPhaseSeconds {
		return t, errors.Validationf("answer_seconds must be between 1 and %d", maxPhaseSeconds).WithCode(CodeInvalidTiming)
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"countdown_seconds", t.CountdownSeconds},
		{"reveal_delay_seconds", t.RevealDelaySeconds},
		{"reveal_seconds", t.RevealSeconds},
	} {
		if f.value < 0 || f.value > maxPhaseSeconds {
			return t, errors.Validationf("%s must be between 0 and %d", f.name, maxPhaseSeconds).WithCode(CodeInvalidTiming)
		}
	}
	return t, nil
}

// normalizePolicy fills defaults and derives the stored pack list and total
func normalizePolicy(p models.SelectionPolicy) models.SelectionPolicy {
	if p.Strategy == "" {
		p.Strategy = models.StrategyAllPacks
	}
	if p.RoundFilter == "" {
		p.RoundFilter = models.FilterMixed
	}
	if p.Strategy == models.StrategyPerPack {
		p.SelectedPacks = p.PackIDs()
		p.TotalQuestions = 0
		for _, r := range p.Rounds {
			if r.Count > 0 {
				p.TotalQuestions += r.Count
			}
		}
	} else {
		p.Rounds = nil
	}
	return p
}

func (s *RoomService) selectQuestions(ctx context.Context, policy models.SelectionPolicy) ([]int64, error) {
	packIDs := policy.PackIDs()
	if len(packIDs) == 0 {
		return nil, &selection.SelectionError{Code: selection.CodeInvalidInput, Message: "select at least one pack"}
	}

	pool, err := s.questions.ListQuestionsForPacks(ctx, packIDs)
	if err != nil {
		return nil, err
	}
	if policy.Strategy == models.StrategyAllPacks {
		pool = uniqueQuestions(pool)
	}

	return selection.Select(policy, pool, s.rng)
}

// uniqueQuestions keeps the first entry for each question so a question
// linked to several chosen packs is only counted once
func uniqueQuestions(pool []models.PoolEntry) []models.PoolEntry {
	seen := make(map[int64]bool, len(pool))
	out := pool[:0:0]
	for _, e := range pool {
		if seen[e.QuestionID] {
			continue
		}
		seen[e.QuestionID] = true
		out = append(out, e)
	}
	return out
}

// Join adds a player to a room that is still in the lobby
func (s *RoomService) Join(ctx context.Context, code, name string) (*models.Player, error) {
	name, key, err := s.cleanName(name)
	if err != nil {
		return nil, err
	}

	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseLobby {
		return nil, ErrRoomNotInLobby
	}

	player := &models.Player{
		ID:       uuid.NewString(),
		RoomID:   room.ID,
		Name:     name,
		NameKey:  key,
		JoinedAt: s.now(),
	}
	if err := s.repo.CreatePlayer(ctx, player); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	s.log.Info("Player joined", "room", room.Code, "player_id", player.ID, "name", player.Name)
	return player, nil
}

// cleanName strips markup and surrounding space from a team name and
// returns it with the key used to detect duplicates
func (s *RoomService) cleanName(raw string) (string, string, error) {
	name := html.UnescapeString(s.names.Sanitize(raw))
	name = strings.Join(strings.Fields(name), " ")

	if n := utf8.RuneCountInString(name); n < 1 || n > maxNameLength {
		return "", "", errors.Validationf("name must be between 1 and %d characters", maxNameLength).WithCode(CodeInvalidName)
	}

	key := evaluator.Normalize(name)
	if key == "" {
		key = strings.ToLower(name)
	}
	return name, key, nil
}

// Start moves a lobby room to its first question. Starting a room that has
// already left the lobby does nothing.
func (s *RoomService) Start(ctx context.Context, code string) (*StartResult, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseLobby {
		return &StartResult{Started: false}, nil
	}
	if len(room.QuestionIDs) == 0 {
		return nil, ErrNoQuestions
	}

	now := s.now()
	started, err := s.repo.StartRoom(ctx, room.ID, room.Timing.ScheduleFrom(now), now)
	if err != nil {
		return nil, err
	}

	if started {
		s.log.Info("Room started", "room", room.Code, "questions", len(room.QuestionIDs))
	} else {
		s.log.Debug("Room start lost race", "room", room.Code)
	}
	return &StartResult{Started: started}, nil
}

// Advance moves a running room past a question whose reveal has ended,
// finishing the room after its last question. Calls made too early, or
// that lose a race with another caller, do nothing.
func (s *RoomService) Advance(ctx context.Context, code string) (*AdvanceResult, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseRunning {
		return &AdvanceResult{Finished: room.Phase == models.PhaseFinished}, nil
	}

	now := s.now()
	if room.NextAt == nil || now.Before(*room.NextAt) {
		return &AdvanceResult{}, nil
	}

	if room.QuestionIndex+1 >= len(room.QuestionIDs) {
		finished, err := s.repo.FinishRoom(ctx, room.ID, room.QuestionIndex, now)
		if err != nil {
			return nil, err
		}
		if finished {
			s.log.Info("Room finished", "room", room.Code)
		}
		return &AdvanceResult{Advanced: finished, Finished: finished}, nil
	}

	advanced, err := s.repo.AdvanceRoom(ctx, room.ID, room.QuestionIndex, room.Timing.ScheduleFrom(now), now)
	if err != nil {
		return nil, err
	}
	if advanced {
		s.log.Info("Room advanced", "room", room.Code, "question_index", room.QuestionIndex+1)
	} else {
		s.log.Debug("Room advance lost race", "room", room.Code, "question_index", room.QuestionIndex)
	}
	return &AdvanceResult{Advanced: advanced}, nil
}

// ForceClose ends the current answer window early. It only acts while the
// window is open.
func (s *RoomService) ForceClose(ctx context.Context, code string) (*ForceCloseResult, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if ComputeStage(room, now) != models.StageOpen {
		return &ForceCloseResult{Forced: false}, nil
	}

	forced, err := s.closeWindow(ctx, room, now)
	if err != nil {
		return nil, err
	}
	return &ForceCloseResult{Forced: forced}, nil
}

func (s *RoomService) closeWindow(ctx context.Context, room *models.Room, now time.Time) (bool, error) {
	revealAt := now.Add(time.Duration(room.RevealDelaySeconds) * time.Second)
	nextAt := revealAt.Add(time.Duration(room.RevealSeconds) * time.Second)

	closed, err := s.repo.CloseAnswerWindow(ctx, room.ID, room.QuestionIndex, now, revealAt, nextAt)
	if err != nil {
		return false, err
	}
	if closed {
		s.log.Info("Answer window closed early", "room", room.Code, "question_index", room.QuestionIndex)
	}
	return closed, nil
}

// RecordAnswer evaluates and stores a player's answer to the current
// question. Once every player in the room has answered, the window closes.
func (s *RoomService) RecordAnswer(ctx context.Context, input AnswerInput) (*AnswerResult, error) {
	room, err := s.getRoom(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseRunning {
		return &AnswerResult{Status: AnswerNotRunning}, nil
	}

	if _, err := s.repo.GetPlayer(ctx, room.ID, input.PlayerID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	if current, ok := room.CurrentQuestionID(); !ok || current != input.QuestionID {
		return &AnswerResult{Status: AnswerNotCurrentQuestion}, nil
	}

	now := s.now()
	if ComputeStage(room, now) != models.StageOpen {
		return &AnswerResult{Status: AnswerNotOpen}, nil
	}

	q, err := s.questions.GetQuestionByID(ctx, input.QuestionID)
	if err != nil {
		return nil, err
	}

	sub := evaluator.Submission{OptionIndex: input.OptionIndex, AnswerText: input.AnswerText}
	correct, err := evaluator.Evaluate(q, sub, room.ID)
	if err != nil {
		return nil, err
	}

	answer := &models.Answer{
		RoomID:     room.ID,
		PlayerID:   input.PlayerID,
		QuestionID: input.QuestionID,
		IsCorrect:  correct,
		CreatedAt:  now,
	}
	if q.AnswerType == models.AnswerMCQ {
		answer.OptionIndex = input.OptionIndex
	} else {
		answer.AnswerText = input.AnswerText
	}

	if err := s.repo.RecordAnswer(ctx, answer, room.QuestionIndex); err != nil {
		switch err {
		case repository.ErrDuplicate:
			return &AnswerResult{Status: AnswerAlreadyAnswered}, nil
		case repository.ErrAnswerWindowClosed:
			return s.lateAnswerStatus(ctx, room, input.QuestionID)
		}
		return nil, err
	}

	s.log.Info("Answer recorded", "room", room.Code, "player_id", input.PlayerID,
		"question_id", input.QuestionID, "correct", correct)

	result := &AnswerResult{Status: AnswerAccepted, IsCorrect: correct}
	result.ClosedEarly = s.closeIfAllAnswered(ctx, room, now)
	return result, nil
}

// lateAnswerStatus classifies an answer the store refused because the room
// moved on after it was read.
func (s *RoomService) lateAnswerStatus(ctx context.Context, seen *models.Room, questionID int64) (*AnswerResult, error) {
	room, err := s.getRoom(ctx, seen.Code)
	if err != nil {
		return nil, err
	}
	if room.Phase != models.PhaseRunning {
		return &AnswerResult{Status: AnswerNotRunning}, nil
	}
	if current, ok := room.CurrentQuestionID(); !ok || current != questionID || room.QuestionIndex != seen.QuestionIndex {
		return &AnswerResult{Status: AnswerNotCurrentQuestion}, nil
	}
	return &AnswerResult{Status: AnswerNotOpen}, nil
}

// closeIfAllAnswered closes the window once every player has answered. The
// answer is already stored, so failures here are logged rather than returned.
func (s *RoomService) closeIfAllAnswered(ctx context.Context, room *models.Room, now time.Time) bool {
	questionID, _ := room.CurrentQuestionID()

	answered, err := s.repo.CountAnsweredPlayers(ctx, room.ID, questionID)
	if err != nil {
		s.log.Error("Failed to count answers", "room", room.Code, "error", err)
		return false
	}
	total, err := s.repo.CountPlayers(ctx, room.ID)
	if err != nil {
		s.log.Error("Failed to count players", "room", room.Code, "error", err)
		return false
	}
	if total == 0 || answered < total {
		return false
	}

	closed, err := s.closeWindow(ctx, room, now)
	if err != nil {
		s.log.Error("Failed to close answer window", "room", room.Code, "error", err)
		return false
	}
	return closed
}

// Reset draws a new question list with the room's stored policy and returns
// the room to the lobby with answers cleared and scores zeroed
func (s *RoomService) Reset(ctx context.Context, code string) (*models.Room, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	questionIDs, err := s.selectQuestions(ctx, room.SelectionPolicy)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ResetRoom(ctx, room.ID, questionIDs, s.now()); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	s.log.Info("Room reset", "room", room.Code, "questions", len(questionIDs))
	return s.getRoom(ctx, room.Code)
}

// JoinQRCode returns a PNG QR code pointing players at the room's join page
func (s *RoomService) JoinQRCode(ctx context.Context, code string) ([]byte, error) {
	room, err := s.getRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.baseURL == "" {
		return nil, ErrBaseURLNotConfig
	}

	joinURL := fmt.Sprintf("%s/join/%s", s.baseURL, room.Code)
	return qrcode.Encode(joinURL, qrcode.Medium, 256)
}
