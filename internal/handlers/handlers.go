package handlers

import (
	"context"

	"github.com/abrezinsky/triviarooms/internal/auth"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/services"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Rooms     services.RoomServicer
	Questions services.QuestionServicer
	Auth      *auth.Auth
	Health    Pinger
	Log       logger.Logger
}

// New creates a new Handlers instance with all dependencies
func New(
	rooms services.RoomServicer,
	questions services.QuestionServicer,
	adminAuth *auth.Auth,
	health Pinger,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Rooms:     rooms,
		Questions: questions,
		Auth:      adminAuth,
		Health:    health,
		Log:       log,
	}
}
