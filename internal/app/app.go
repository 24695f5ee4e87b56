package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/auth"
	"github.com/abrezinsky/triviarooms/internal/cache"
	"github.com/abrezinsky/triviarooms/internal/config"
	"github.com/abrezinsky/triviarooms/internal/handlers"
	"github.com/abrezinsky/triviarooms/internal/janitor"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/services"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	repo     *repository.Repository
	cache    cache.Cache
	rooms    *services.RoomService
	handlers *handlers.Handlers
	janitor  *janitor.Janitor
	baseURL  string
}

// New creates and initializes a new application instance. A nil clock uses
// the real clock.
func New(log logger.Logger, cfg *config.Config, adminAuth *auth.Auth, clock clockwork.Clock) (*App, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	questionCache, err := newCache(log, cfg, clock)
	if err != nil {
		repo.Close()
		return nil, err
	}

	// Initialize services
	questionService := services.NewQuestionService(log, repo, questionCache, cfg.QuestionCacheTTL)
	roomService := services.NewRoomService(log, repo, questionService, clock)
	roomService.SetDefaultTiming(cfg.DefaultTiming)

	h := handlers.New(roomService, questionService, adminAuth, repo, log)

	a := &App{
		log:      log,
		cfg:      cfg,
		repo:     repo,
		cache:    questionCache,
		rooms:    roomService,
		handlers: h,
		janitor:  janitor.New(log, repo, clock, cfg.RoomRetention, cfg.JanitorInterval),
	}
	a.setBaseURL(cfg.BaseURL)
	return a, nil
}

func newCache(log logger.Logger, cfg *config.Config, clock clockwork.Clock) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("Using in-memory question cache")
		return cache.NewMemory(clock), nil
	}
	c, err := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("Using Redis question cache", "addr", cfg.RedisAddr)
	return c, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the public URL used in join links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() error {
	var errs []error
	if err := a.janitor.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop janitor: %w", err))
	}
	if err := a.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close cache: %w", err))
	}
	if err := a.repo.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close repository: %w", err))
	}
	return stderrors.Join(errs...)
}

// Run starts the HTTP server and the janitor, and blocks until ctx is
// cancelled or the server fails
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Addr(), err)
	}

	// Set default base URL if not configured, using detected LAN IP
	port := ln.Addr().(*net.TCPAddr).Port
	ip := getPreferredIP(realNetworkProvider{})
	a.setDefaultBaseURL(fmt.Sprintf("http://%s:%d", ip, port))

	if err := a.janitor.Start(); err != nil {
		ln.Close()
		return err
	}

	server := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	a.log.Info("Server starting", "url", a.baseURL)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) setBaseURL(baseURL string) {
	a.baseURL = strings.TrimSuffix(baseURL, "/")
	a.rooms.SetBaseURL(a.baseURL)
}

// setDefaultBaseURL sets the base URL if not already configured
// or if the current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	if a.baseURL != "" && !strings.Contains(a.baseURL, "localhost") {
		return
	}
	a.setBaseURL(baseURL)
	a.log.Info("Default base URL set", "url", a.baseURL)
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IPv4 address for players on the same
// network to reach. Private ranges win; localhost if nothing is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}
