package handlers

import (
	"net/http"

	"github.com/abrezinsky/triviarooms/internal/services"
)

// ==================== Health ====================

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Log.Warn("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, &APIError{
				Code:    ErrCodeUnavailable,
				Message: "store unavailable",
			})
			return
		}
	}
	respondOK(w, HealthResponse{Status: "ok"})
}

// ==================== Packs ====================

func (h *Handlers) handleListPacks(w http.ResponseWriter, r *http.Request) {
	packs, err := h.Questions.ListPacks(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, packs)
}

func (h *Handlers) handleCreatePack(w http.ResponseWriter, r *http.Request) {
	var req services.PackInput
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	pack, err := h.Questions.CreatePack(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, pack)
}

// ==================== Questions ====================

func (h *Handlers) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := h.Questions.CreateQuestion(r.Context(), req.Question(), req.PackIDs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, QuestionCreatedResponse{ID: id})
}

func (h *Handlers) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := parseInt64Param(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	q, err := h.Questions.GetQuestionByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, q)
}
