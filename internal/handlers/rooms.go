package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/triviarooms/internal/services"
)

func normalizedCode(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
}

func (h *Handlers) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	room, err := h.Rooms.CreateRoom(r.Context(), req.Input())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, newRoomResponse(room))
}

func (h *Handlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Rooms.State(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondOK(w, state)
}

func (h *Handlers) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Rooms.JoinQRCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

func (h *Handlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	player, err := h.Rooms.Join(r.Context(), chi.URLParam(r, "code"), req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondCreated(w, JoinResponse{
		PlayerID: player.ID,
		Name:     player.Name,
		RoomCode: normalizedCode(r),
	})
}

func (h *Handlers) handleStart(w http.ResponseWriter, r *http.Request) {
	result, err := h.Rooms.Start(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleAdvance(w http.ResponseWriter, r *http.Request) {
	result, err := h.Rooms.Advance(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleForceClose(w http.ResponseWriter, r *http.Request) {
	result, err := h.Rooms.ForceClose(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, result)
}

func (h *Handlers) handleReset(w http.ResponseWriter, r *http.Request) {
	room, err := h.Rooms.Reset(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, newRoomResponse(room))
}

func (h *Handlers) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Rooms.RecordAnswer(r.Context(), services.AnswerInput{
		Code:        chi.URLParam(r, "code"),
		PlayerID:    req.PlayerID,
		QuestionID:  req.QuestionID,
		OptionIndex: req.OptionIndex,
		AnswerText:  req.AnswerText,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, result)
}
