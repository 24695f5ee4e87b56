package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	CookieName    = "triviarooms_session"
	HeaderName    = "X-Admin-Secret"
	SessionExpiry = 12 * time.Hour
)

// Trivia-themed words for password generation
var triviaWords = []string{
	"quiz", "buzzer", "trivia", "answer", "bonus",
	"round", "question", "riddle", "puzzle", "champion",
	"podium", "genius", "fact", "league", "pub",
	"team", "score", "lightning", "jackpot",
}

// Auth guards the host-only endpoints with a shared admin secret. Hosts
// either send the secret on every request or exchange it for a session
// cookie via Login.
type Auth struct {
	secret   string
	clock    clockwork.Clock
	sessions map[string]time.Time
	mu       sync.RWMutex
}

// New creates a new Auth instance with the given secret
func New(secret string, clock clockwork.Clock) *Auth {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Auth{
		secret:   secret,
		clock:    clock,
		sessions: make(map[string]time.Time),
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		idx := randomInt(len(triviaWords))
		words[i] = triviaWords[idx]
	}
	return strings.Join(words, "-")
}

// CheckSecret reports whether candidate matches the admin secret
func (a *Auth) CheckSecret(candidate string) bool {
	if a.secret == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) == 1
}

// Login validates the secret and returns a session token if valid
func (a *Auth) Login(secret string) (string, bool) {
	if !a.CheckSecret(secret) {
		return "", false
	}

	token := rand.Text()
	now := a.clock.Now()

	a.mu.Lock()
	for t, expiry := range a.sessions {
		if now.After(expiry) {
			delete(a.sessions, t)
		}
	}
	a.sessions[token] = now.Add(SessionExpiry)
	a.mu.Unlock()

	return token, true
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession checks if a session token is valid
func (a *Auth) ValidateSession(token string) bool {
	a.mu.RLock()
	expiry, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return false
	}

	if a.clock.Now().After(expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return false
	}

	return true
}

// Authorized reports whether the request carries the admin secret, either
// in the X-Admin-Secret header, as a bearer token, or through a session
// cookie
func (a *Auth) Authorized(r *http.Request) bool {
	if a.CheckSecret(r.Header.Get(HeaderName)) {
		return true
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && a.CheckSecret(bearer) {
		return true
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return a.ValidateSession(cookie.Value)
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"admin secret required"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// randomInt returns a uniform random int in [0, max)
func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
