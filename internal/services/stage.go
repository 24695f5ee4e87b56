package services

import (
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// ComputeStage derives a room's stage from its timestamps at now. Rooms that
// are not running report their phase.
func ComputeStage(room *models.Room, now time.Time) models.Stage {
	switch room.Phase {
	case models.PhaseLobby:
		return models.StageLobby
	case models.PhaseFinished:
		return models.StageFinished
	}

	if room.OpenAt == nil || room.CloseAt == nil || room.RevealAt == nil || room.NextAt == nil {
		return models.StageCountdown
	}

	switch {
	case now.Before(*room.OpenAt):
		return models.StageCountdown
	case now.Before(*room.CloseAt):
		return models.StageOpen
	case now.Before(*room.RevealAt):
		return models.StageWait
	case now.Before(*room.NextAt):
		return models.StageReveal
	}
	return models.StageNeedsAdvance
}
