package services_test

import (
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/services"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  *errors.Error
		kind errors.Kind
		code string
	}{
		{"ErrRoomNotFound", services.ErrRoomNotFound, errors.ErrNotFound, services.CodeRoomNotFound},
		{"ErrPlayerNotFound", services.ErrPlayerNotFound, errors.ErrNotFound, services.CodePlayerNotFound},
		{"ErrNameTaken", services.ErrNameTaken, errors.ErrConflict, services.CodeNameTaken},
		{"ErrRoomNotInLobby", services.ErrRoomNotInLobby, errors.ErrConflict, services.CodeRoomNotInLobby},
		{"ErrNoQuestions", services.ErrNoQuestions, errors.ErrConflict, services.CodeNoQuestions},
		{"ErrPackExists", services.ErrPackExists, errors.ErrConflict, services.CodePackExists},
		{"ErrBaseURLNotConfig", services.ErrBaseURLNotConfig, errors.ErrValidation, services.CodeBaseURLNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, tt.err.Code)
			}
			if tt.err.Error() == "" {
				t.Error("expected a message")
			}
			if !stderrors.Is(tt.err.WithCode(tt.code), tt.err) {
				t.Error("expected errors.Is to match on kind and code")
			}
		})
	}
}
