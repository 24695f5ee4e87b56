package handlers

import (
	"net/http"

	"github.com/abrezinsky/triviarooms/internal/auth"
)

// handleLogin exchanges the admin secret for a session cookie
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	token, ok := h.Auth.Login(req.Secret)
	if !ok {
		h.respondError(w, r, Unauthorized("Invalid admin secret"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondOK(w, map[string]bool{"ok": true})
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	respondOK(w, map[string]bool{"ok": true})
}
