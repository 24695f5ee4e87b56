package main

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

func TestHandleKey_ToggleHTTPLogging(t *testing.T) {
	var out bytes.Buffer
	log := logger.Discard()

	if handleKey(&out, 'h', log) {
		t.Fatal("h should not quit")
	}
	if !log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging enabled")
	}
	handleKey(&out, 'H', log)
	if log.IsHTTPLoggingEnabled() {
		t.Error("expected HTTP logging disabled")
	}
	if !strings.Contains(out.String(), "HTTP logging disabled") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestCycleLogLevel(t *testing.T) {
	var out bytes.Buffer
	log := logger.Discard()
	log.SetLevel(slog.LevelDebug)

	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelDebug}
	for _, level := range want {
		handleKey(&out, 'l', log)
		if log.GetLevel() != level {
			t.Errorf("expected %v, got %v", level, log.GetLevel())
		}
	}
}

func TestHandleKey_Quit(t *testing.T) {
	var out bytes.Buffer
	for _, key := range []byte{'q', 'Q', 0x03} {
		if !handleKey(&out, key, logger.Discard()) {
			t.Errorf("expected %q to quit", key)
		}
	}
	if handleKey(&out, 'x', logger.Discard()) {
		t.Error("unbound key should not quit")
	}
}

func TestHandleKey_Help(t *testing.T) {
	var out bytes.Buffer
	handleKey(&out, '?', logger.Discard())
	if !strings.Contains(out.String(), "Keyboard Shortcuts") {
		t.Errorf("expected help output, got %q", out.String())
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("closed") }

func TestReadKeys(t *testing.T) {
	var out bytes.Buffer
	quit := 0
	readKeys(strings.NewReader("hlq?"), &out, logger.Discard(), func() { quit++ })
	if quit != 1 {
		t.Errorf("expected quit once, got %d", quit)
	}
	if strings.Contains(out.String(), "Keyboard Shortcuts") {
		t.Error("keys after q should not be read")
	}

	readKeys(errReader{}, &out, logger.Discard(), func() { quit++ })
	if quit != 1 {
		t.Error("read error should not quit")
	}
}

func TestShowBanner(t *testing.T) {
	var out bytes.Buffer
	showBanner(&out, true)
	if !strings.Contains(out.String(), "╔") || strings.Contains(out.String(), "Let's play!") {
		t.Errorf("unexpected banner: %q", out.String())
	}
}

func TestCentered(t *testing.T) {
	got := centered("3")
	if len(got) != bannerWidth || strings.TrimSpace(got) != "3" {
		t.Errorf("unexpected centered output %q", got)
	}
	if centered(strings.Repeat("x", 70)) != strings.Repeat("x", 70) {
		t.Error("long strings should be returned unchanged")
	}
}
