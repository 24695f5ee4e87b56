package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/auth"
	"github.com/abrezinsky/triviarooms/internal/config"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:             0,
		DBPath:           ":memory:",
		QuestionCacheTTL: time.Minute,
		DefaultTiming:    models.Timing{CountdownSeconds: 5, AnswerSeconds: 20, RevealDelaySeconds: 1, RevealSeconds: 8},
	}
}

func createTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	clock := clockwork.NewFakeClock()
	app, err := New(logger.Discard(), cfg, auth.New("test-secret", clock), clock)
	if err != nil {
		t.Fatalf("failed to create test app: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, testConfig())

	if app.handlers == nil || app.repo == nil || app.rooms == nil || app.janitor == nil {
		t.Errorf("expected all components initialized: %+v", app)
	}
	if app.cache == nil {
		t.Error("expected in-memory cache when no redis address is set")
	}
	if app.BaseURL() != "" {
		t.Errorf("expected empty base URL, got %s", app.BaseURL())
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	if _, err := New(logger.Discard(), cfg, auth.New("s", nil), nil); err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_FailsWithUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisAddr = "127.0.0.1:1"

	if _, err := New(logger.Discard(), cfg, auth.New("s", nil), nil); err == nil {
		t.Error("expected error for unreachable redis")
	}
}

func TestNew_ConfiguredBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "https://quiz.example.org/"
	app := createTestApp(t, cfg)

	if app.BaseURL() != "https://quiz.example.org" {
		t.Errorf("expected trimmed base URL, got %s", app.BaseURL())
	}
}

func TestApp_Router_ServesRequests(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /healthz, got %d", resp.StatusCode)
	}
}

func TestApp_Router_RequiresSecretForRoomCreation(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/rooms", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSetDefaultBaseURL(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{"sets when empty", "", "http://192.168.1.20:8080"},
		{"replaces localhost", "http://localhost:8080", "http://192.168.1.20:8080"},
		{"keeps configured", "https://quiz.example.org", "https://quiz.example.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.BaseURL = tt.configured
			app := createTestApp(t, cfg)

			app.setDefaultBaseURL("http://192.168.1.20:8080")
			if app.BaseURL() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, app.BaseURL())
			}
		})
	}
}

func TestApp_Run_ShutsDownOnCancel(t *testing.T) {
	app := createTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if !strings.HasPrefix(app.BaseURL(), "http://") {
		t.Errorf("expected detected base URL, got %q", app.BaseURL())
	}
}

func TestApp_Run_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	app := createTestApp(t, cfg)

	if err := app.Run(context.Background()); err == nil {
		t.Error("expected error when port is taken")
	}
}

func TestApp_Close(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := testConfig()
	cfg.RoomRetention = time.Hour
	cfg.JanitorInterval = time.Minute

	app, err := New(logger.Discard(), cfg, auth.New("s", clock), clock)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := app.janitor.Start(); err != nil {
		t.Fatalf("janitor start failed: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestGetPreferredIP_ReturnsValidIP(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})

	if ip == "" {
		t.Error("expected non-empty IP")
	}
	if ip != "localhost" && net.ParseIP(ip) == nil {
		t.Errorf("expected valid IP, got: %s", ip)
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

// mockNetworkProvider implements networkProvider for testing
type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "network error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "ip addr type",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("192.168.1.100")}}},
			}},
			want: "192.168.1.100",
		},
		{
			name: "private preferred over public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("172.20.0.5")}},
			}},
			want: "172.20.0.5",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "skips down and loopback interfaces",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: 0, addrs: []net.Addr{ipNet("10.0.0.1")}},
				mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("10.0.0.2")}},
			}},
			want: "localhost",
		},
		{
			name: "skips loopback and ipv6 addresses",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{
					ipNet("127.0.0.1"),
					&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
					ipNet("192.168.1.50"),
				}},
			}},
			want: "192.168.1.50",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("getPreferredIP() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRealNetworkProvider_Interfaces(t *testing.T) {
	ifaces, err := realNetworkProvider{}.Interfaces()
	if err != nil {
		t.Logf("net.Interfaces() failed (this is system-dependent): %v", err)
		return
	}
	for i, iface := range ifaces {
		_ = iface.Flags()
		if _, err := iface.Addrs(); err != nil {
			t.Logf("interface %d Addrs() failed: %v", i, err)
		}
	}
}
