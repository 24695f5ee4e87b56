package handlers_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/triviarooms/internal/handlers"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/services"
)

// ==================== Create ====================

func TestCreateRoom_RequiresSecret(t *testing.T) {
	ts := newTestSetup(t)

	rr := ts.do(t, "POST", "/api/rooms", map[string]any{"selected_packs": []int64{ts.packID}, "total_questions": 1}, false)
	expectErrorCode(t, rr, http.StatusUnauthorized, handlers.ErrCodeUnauthorized)
}

func TestCreateRoom(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 5)

	if len(room.Code) != 5 || room.Phase != models.PhaseLobby || room.QuestionCount != 5 {
		t.Errorf("unexpected room: %+v", room)
	}
	if room.CountdownSeconds != 0 || room.AnswerSeconds != 30 || room.RevealDelaySeconds != 1 || room.RevealSeconds != 8 {
		t.Errorf("unexpected timing: %+v", room)
	}
	if room.SelectionStrategy != models.StrategyAllPacks || room.RoundFilter != models.FilterMixed {
		t.Errorf("expected default policy, got %s/%s", room.SelectionStrategy, room.RoundFilter)
	}
}

func TestCreateRoom_SelectionErrorIs422(t *testing.T) {
	ts := newTestSetup(t)

	rr := ts.do(t, "POST", "/api/rooms", map[string]any{
		"selected_packs":  []int64{ts.packID},
		"total_questions": 11,
	}, true)
	expectErrorCode(t, rr, http.StatusUnprocessableEntity, "INSUFFICIENT_QUESTIONS")

	apiErr := decode[handlers.APIError](t, rr)
	if apiErr.Details["requested"] != float64(11) || apiErr.Details["available"] != float64(10) {
		t.Errorf("unexpected details: %v", apiErr.Details)
	}
}

func TestCreateRoom_PerPackErrorNamesPack(t *testing.T) {
	ts := newTestSetup(t)

	rr := ts.do(t, "POST", "/api/rooms", map[string]any{
		"selection_strategy": "per_pack",
		"rounds":             []map[string]any{{"pack_id": ts.packID, "count": 12}},
	}, true)
	expectErrorCode(t, rr, http.StatusUnprocessableEntity, "INSUFFICIENT_QUESTIONS_PER_PACK")

	apiErr := decode[handlers.APIError](t, rr)
	if apiErr.Details["pack_id"] != float64(ts.packID) {
		t.Errorf("expected pack_id in details, got %v", apiErr.Details)
	}
}

func TestCreateRoom_BadRequests(t *testing.T) {
	ts := newTestSetup(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"empty body", nil, handlers.ErrCodeBadRequest},
		{"bad json", "{", handlers.ErrCodeBadRequest},
		{"unknown strategy", map[string]any{"selection_strategy": "random"}, handlers.ErrCodeBadRequest},
		{"unknown audio mode", map[string]any{"audio_mode": "radio"}, handlers.ErrCodeBadRequest},
		{"bad timing", map[string]any{"selected_packs": []int64{ts.packID}, "total_questions": 1, "answer_seconds": 0}, services.CodeInvalidTiming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, "POST", "/api/rooms", tt.body, true)
			expectErrorCode(t, rr, http.StatusBadRequest, tt.code)
		})
	}
}

// ==================== Join ====================

func TestJoin(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 1)

	joined := ts.join(t, strings.ToLower(room.Code), " Trivia Newton John ")
	if joined.PlayerID == "" || joined.Name != "Trivia Newton John" || joined.RoomCode != room.Code {
		t.Errorf("unexpected join response: %+v", joined)
	}

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/join", handlers.JoinRequest{Name: "TRIVIA newton JOHN"}, false)
	expectErrorCode(t, rr, http.StatusConflict, services.CodeNameTaken)

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/join", handlers.JoinRequest{Name: "  "}, false)
	expectErrorCode(t, rr, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/join", handlers.JoinRequest{Name: strings.Repeat("n", 30)}, false)
	expectErrorCode(t, rr, http.StatusBadRequest, services.CodeInvalidName)
}

func TestJoin_UnknownRoom(t *testing.T) {
	ts := newTestSetup(t)

	rr := ts.do(t, "POST", "/api/rooms/NOPE1/join", handlers.JoinRequest{Name: "Team"}, false)
	expectErrorCode(t, rr, http.StatusNotFound, services.CodeRoomNotFound)
}

func TestJoin_AfterStart(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 1)
	ts.join(t, room.Code, "First")
	expectStatus(t, ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true), http.StatusOK)

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/join", handlers.JoinRequest{Name: "Late"}, false)
	expectErrorCode(t, rr, http.StatusConflict, services.CodeRoomNotInLobby)
}

// ==================== Game flow ====================

func TestStart_RequiresSecret(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 1)

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, false)
	expectStatus(t, rr, http.StatusUnauthorized)

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true)
	expectStatus(t, rr, http.StatusOK)
	if res := decode[services.StartResult](t, rr); !res.Started {
		t.Error("expected started")
	}

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true)
	expectStatus(t, rr, http.StatusOK)
	if res := decode[services.StartResult](t, rr); res.Started {
		t.Error("expected second start to report started=false")
	}
}

func TestGameFlow(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 2)
	alice := ts.join(t, room.Code, "Alice")
	bob := ts.join(t, room.Code, "Bob")

	lobby := ts.state(t, room.Code)
	if lobby.Stage != models.StageLobby || lobby.Question != nil || len(lobby.Players) != 2 {
		t.Fatalf("unexpected lobby state: %+v", lobby)
	}

	expectStatus(t, ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true), http.StatusOK)

	open := ts.state(t, room.Code)
	if open.Stage != models.StageOpen || open.Question == nil || open.Reveal != nil {
		t.Fatalf("unexpected open state: %+v", open)
	}
	if strings.Contains(ts.do(t, "GET", "/api/rooms/"+room.Code+"/state", nil, false).Body.String(), "answer_index") {
		t.Error("answer leaked before reveal")
	}

	right := -1
	for i, opt := range open.Question.Options {
		if opt == "Right" {
			right = i
		}
	}

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: alice.PlayerID, QuestionID: open.Question.ID, OptionIndex: &right,
	}, false)
	expectStatus(t, rr, http.StatusOK)
	if res := decode[services.AnswerResult](t, rr); res.Status != services.AnswerAccepted || !res.IsCorrect || res.ClosedEarly {
		t.Errorf("unexpected answer result: %+v", res)
	}

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: alice.PlayerID, QuestionID: open.Question.ID, OptionIndex: &right,
	}, false)
	if res := decode[services.AnswerResult](t, rr); res.Status != services.AnswerAlreadyAnswered {
		t.Errorf("expected already_answered, got %+v", res)
	}

	wrong := (right + 1) % 4
	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: bob.PlayerID, QuestionID: open.Question.ID, OptionIndex: &wrong,
	}, false)
	if res := decode[services.AnswerResult](t, rr); res.IsCorrect || !res.ClosedEarly {
		t.Errorf("expected wrong answer closing the window, got %+v", res)
	}

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/advance", nil, false)
	if res := decode[services.AdvanceResult](t, rr); res.Advanced {
		t.Error("expected advance before reveal ends to be a no-op")
	}

	ts.clock.Advance(time.Second)
	reveal := ts.state(t, room.Code)
	if reveal.Stage != models.StageReveal || reveal.Reveal == nil {
		t.Fatalf("expected reveal, got %+v", reveal)
	}
	if reveal.Reveal.AnswerIndex == nil || *reveal.Reveal.AnswerIndex != right {
		t.Errorf("expected reveal index %d, got %v", right, reveal.Reveal.AnswerIndex)
	}
	if reveal.Reveal.FirstCorrectPlayerName != "Alice" || reveal.Reveal.AnsweredCount != 2 || reveal.Reveal.CorrectCount != 1 {
		t.Errorf("unexpected reveal: %+v", reveal.Reveal)
	}
	if reveal.Players[0].Name != "Alice" || reveal.Players[0].Score != 1 {
		t.Errorf("expected Alice leading, got %+v", reveal.Players)
	}

	ts.clock.Advance(8 * time.Second)
	if s := ts.state(t, room.Code); s.Stage != models.StageNeedsAdvance {
		t.Fatalf("expected needs_advance, got %s", s.Stage)
	}

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/advance", nil, false)
	if res := decode[services.AdvanceResult](t, rr); !res.Advanced || res.Finished {
		t.Errorf("expected advance, got %+v", res)
	}

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/force-close", nil, false)
	if res := decode[services.ForceCloseResult](t, rr); !res.Forced {
		t.Error("expected force close on the open second question")
	}

	ts.clock.Advance(10 * time.Second)
	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/advance", nil, false)
	if res := decode[services.AdvanceResult](t, rr); !res.Advanced || !res.Finished {
		t.Errorf("expected finish, got %+v", res)
	}

	finished := ts.state(t, room.Code)
	if finished.Phase != models.PhaseFinished || finished.Reveal == nil {
		t.Errorf("unexpected finished state: %+v", finished)
	}
}

func TestAnswer_Validation(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 1)
	p := ts.join(t, room.Code, "Solo")
	ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true)
	qid := ts.state(t, room.Code).Question.ID

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{QuestionID: qid}, false)
	expectErrorCode(t, rr, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{PlayerID: p.PlayerID}, false)
	expectErrorCode(t, rr, http.StatusBadRequest, handlers.ErrCodeBadRequest)

	text := "Right"
	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: p.PlayerID, QuestionID: qid, AnswerText: &text,
	}, false)
	expectErrorCode(t, rr, http.StatusBadRequest, "MISSING_OPTION_INDEX")

	zero := 0
	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: "ghost", QuestionID: qid, OptionIndex: &zero,
	}, false)
	expectErrorCode(t, rr, http.StatusNotFound, services.CodePlayerNotFound)

	rr = ts.do(t, "POST", "/api/rooms/"+room.Code+"/answer", handlers.AnswerRequest{
		PlayerID: p.PlayerID, QuestionID: qid + 1000, OptionIndex: &zero,
	}, false)
	expectStatus(t, rr, http.StatusOK)
	if res := decode[services.AnswerResult](t, rr); res.Status != services.AnswerNotCurrentQuestion {
		t.Errorf("expected not_current_question, got %s", res.Status)
	}
}

// ==================== Reset ====================

func TestReset(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 3)
	ts.join(t, room.Code, "Solo")
	ts.do(t, "POST", "/api/rooms/"+room.Code+"/start", nil, true)

	expectStatus(t, ts.do(t, "POST", "/api/rooms/"+room.Code+"/reset", nil, false), http.StatusUnauthorized)

	rr := ts.do(t, "POST", "/api/rooms/"+room.Code+"/reset", nil, true)
	expectStatus(t, rr, http.StatusOK)
	reset := decode[handlers.RoomResponse](t, rr)
	if reset.Phase != models.PhaseLobby || reset.QuestionCount != 3 || reset.Code != room.Code {
		t.Errorf("unexpected reset room: %+v", reset)
	}

	state := ts.state(t, room.Code)
	if state.Stage != models.StageLobby || len(state.Players) != 1 || state.Players[0].Score != 0 {
		t.Errorf("unexpected state after reset: %+v", state)
	}
}

// ==================== QR ====================

func TestJoinQR(t *testing.T) {
	ts := newTestSetup(t)
	room := ts.createRoom(t, 1)

	rr := ts.do(t, "GET", "/api/rooms/"+room.Code+"/qr", nil, false)
	expectErrorCode(t, rr, http.StatusBadRequest, services.CodeBaseURLNotConfigured)

	ts.rooms.SetBaseURL("https://quiz.example.org")
	rr = ts.do(t, "GET", "/api/rooms/"+room.Code+"/qr", nil, false)
	expectStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG body")
	}

	rr = ts.do(t, "GET", "/api/rooms/ZZZZZ/qr", nil, false)
	expectErrorCode(t, rr, http.StatusNotFound, services.CodeRoomNotFound)
}
