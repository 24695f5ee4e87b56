package handlers_test

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/auth"
	"github.com/abrezinsky/triviarooms/internal/cache"
	"github.com/abrezinsky/triviarooms/internal/handlers"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/services"
	"github.com/abrezinsky/triviarooms/internal/testutil"
)

const testSecret = "test-secret"

// testSetup creates all the dependencies needed for testing handlers
type testSetup struct {
	repo      *repository.Repository
	clock     *clockwork.FakeClock
	rooms     *services.RoomService
	questions *services.QuestionService
	handlers  *handlers.Handlers
	router    chi.Router
	packID    int64
}

// newTestSetup creates a new test setup with an in-memory repository and
// one seeded pack of ten questions
func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	log := logger.Discard()

	questions := services.NewQuestionService(log, repo, cache.NewMemory(clock), time.Minute)
	rooms := services.NewRoomService(log, repo, questions, clock)
	rooms.SetRand(rand.New(rand.NewPCG(7, 7)))

	h := handlers.New(rooms, questions, auth.New(testSecret, clock), repo, log)
	packID, _ := testutil.SeedPack(t, repo, "General", models.RoundGeneral, 10)

	return &testSetup{
		repo:      repo,
		clock:     clock,
		rooms:     rooms,
		questions: questions,
		handlers:  h,
		router:    h.Router(),
		packID:    packID,
	}
}

// do sends a JSON request through the router. Admin requests carry the secret.
func (ts *testSetup) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(auth.HeaderName, testSecret)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
}

func expectErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rr, status)
	apiErr := decode[handlers.APIError](t, rr)
	if apiErr.Code != code {
		t.Errorf("expected code %s, got %s (%s)", code, apiErr.Code, apiErr.Message)
	}
}

// createRoom creates a room with the given number of questions that opens immediately
func (ts *testSetup) createRoom(t *testing.T, total int) handlers.RoomResponse {
	t.Helper()
	rr := ts.do(t, "POST", "/api/rooms", map[string]any{
		"selected_packs":    []int64{ts.packID},
		"total_questions":   total,
		"countdown_seconds": 0,
		"answer_seconds":    30,
	}, true)
	expectStatus(t, rr, http.StatusCreated)
	return decode[handlers.RoomResponse](t, rr)
}

func (ts *testSetup) join(t *testing.T, code, name string) handlers.JoinResponse {
	t.Helper()
	rr := ts.do(t, "POST", "/api/rooms/"+code+"/join", handlers.JoinRequest{Name: name}, false)
	expectStatus(t, rr, http.StatusCreated)
	return decode[handlers.JoinResponse](t, rr)
}

func (ts *testSetup) state(t *testing.T, code string) services.RoomState {
	t.Helper()
	rr := ts.do(t, "GET", "/api/rooms/"+code+"/state", nil, false)
	expectStatus(t, rr, http.StatusOK)
	return decode[services.RoomState](t, rr)
}
