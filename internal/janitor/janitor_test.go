package janitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/janitor"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/repository/mock"
	"github.com/abrezinsky/triviarooms/internal/testutil"
)

var start = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func seedRoom(t *testing.T, repo repository.RoomRepository, id, code string, updated time.Time) {
	t.Helper()
	room := &models.Room{
		ID:          id,
		Code:        code,
		Phase:       models.PhaseLobby,
		QuestionIDs: []int64{1},
		Timing:      models.Timing{AnswerSeconds: 20},
		SelectionPolicy: models.SelectionPolicy{
			Strategy:       models.StrategyAllPacks,
			RoundFilter:    models.FilterMixed,
			TotalQuestions: 1,
		},
		AudioMode: models.AudioDisplay,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
	if err := repo.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
}

func TestRunOnce_DeletesIdleRooms(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	clock := clockwork.NewFakeClockAt(start)

	seedRoom(t, repo, "old", "OLDRM", start.Add(-48*time.Hour))
	seedRoom(t, repo, "new", "NEWRM", start.Add(-time.Hour))

	j := janitor.New(logger.Discard(), repo, clock, 24*time.Hour, time.Minute)
	deleted, err := j.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 room deleted, got %d", deleted)
	}

	if _, err := repo.GetRoomByCode(context.Background(), "OLDRM"); err == nil {
		t.Error("expected idle room to be gone")
	}
	if _, err := repo.GetRoomByCode(context.Background(), "NEWRM"); err != nil {
		t.Errorf("expected recent room to survive: %v", err)
	}
}

func TestRunOnce_RepoError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	repo.DeleteRoomsIdleSinceError = errors.New("database is locked")

	j := janitor.New(logger.Discard(), repo, clockwork.NewFakeClockAt(start), time.Hour, time.Minute)
	if _, err := j.RunOnce(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestStart_Disabled(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	j := janitor.New(logger.Discard(), repo, nil, 0, time.Minute)

	if j.Enabled() {
		t.Error("expected janitor disabled with zero retention")
	}
	if err := j.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	j := janitor.New(logger.Discard(), repo, clockwork.NewFakeClockAt(start), time.Hour, time.Minute)

	if err := j.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := j.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	// second stop is a no-op
	if err := j.Stop(); err != nil {
		t.Errorf("second Stop failed: %v", err)
	}
}
