package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)

	// Room API (public)
	r.Route("/api/rooms/{code}", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/qr", h.handleJoinQR)
		r.Post("/join", h.handleJoin)
		r.Post("/advance", h.handleAdvance)
		r.Post("/force-close", h.handleForceClose)
		r.Post("/answer", h.handleAnswer)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)
			r.Post("/start", h.handleStart)
			r.Post("/reset", h.handleReset)
		})
	})

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Post("/api/rooms", h.handleCreateRoom)

		// Question bank
		r.Get("/api/admin/packs", h.handleListPacks)
		r.Post("/api/admin/packs", h.handleCreatePack)
		r.Post("/api/admin/questions", h.handleCreateQuestion)
		r.Get("/api/admin/questions/{id}", h.handleGetQuestion)
	})

	return r
}
