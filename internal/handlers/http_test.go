package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/evaluator"
	"github.com/abrezinsky/triviarooms/internal/handlers"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/selection"
	"github.com/abrezinsky/triviarooms/internal/services"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err    *handlers.APIError
		status int
		code   string
	}{
		{handlers.BadRequest("bad"), http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{handlers.Unauthorized("who"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{handlers.NotFound("gone"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{handlers.Conflict("clash"), http.StatusConflict, handlers.ErrCodeConflict},
		{handlers.InternalError(), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.status || tt.err.Code != tt.code {
			t.Errorf("expected %d/%s, got %d/%s", tt.status, tt.code, tt.err.Status, tt.err.Code)
		}
	}
}

func TestToAPIError(t *testing.T) {
	selErr := &selection.SelectionError{
		Code:    selection.CodeInsufficientQuestions,
		Message: "requested 5 questions but only 2 are available",
		Details: map[string]any{"requested": 5, "available": 2},
	}

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"selection", selErr, http.StatusUnprocessableEntity, selection.CodeInsufficientQuestions, selErr.Message},
		{"wrapped selection", fmt.Errorf("reset: %w", selErr), http.StatusUnprocessableEntity, selection.CodeInsufficientQuestions, selErr.Message},
		{"validation with code", evaluator.ErrMissingOptionIndex, http.StatusBadRequest, evaluator.CodeMissingOptionIndex, ""},
		{"validation without code", errors.Validation("nope"), http.StatusBadRequest, handlers.ErrCodeValidation, "nope"},
		{"invalid input", errors.InvalidInput("odd"), http.StatusBadRequest, handlers.ErrCodeValidation, "odd"},
		{"not found", services.ErrRoomNotFound, http.StatusNotFound, services.CodeRoomNotFound, ""},
		{"not found without code", errors.NotFound("missing"), http.StatusNotFound, handlers.ErrCodeNotFound, "missing"},
		{"conflict", services.ErrNameTaken, http.StatusConflict, services.CodeNameTaken, ""},
		{"conflict without code", errors.Conflict("clash"), http.StatusConflict, handlers.ErrCodeConflict, "clash"},
		{"internal kind", errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError, handlers.ErrCodeInternalServer, "Internal server error"},
		{"repository not found", fmt.Errorf("lookup: %w", repository.ErrNotFound), http.StatusNotFound, handlers.ErrCodeNotFound, ""},
		{"plain error", fmt.Errorf("db connection failed"), http.StatusInternalServerError, handlers.ErrCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
			if tt.message != "" && apiErr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, apiErr.Message)
			}
		})
	}
}

func TestToAPIError_SelectionDetails(t *testing.T) {
	apiErr := handlers.ToAPIError(&selection.SelectionError{
		Code:    selection.CodeInsufficientQuestionsPerPack,
		Details: map[string]any{"pack_id": int64(3)},
	})
	if apiErr.Details["pack_id"] != int64(3) {
		t.Errorf("expected details carried through, got %v", apiErr.Details)
	}
}
