package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	magenta   = "\033[35m"
	bold      = "\033[1m"
)

const bannerWidth = 62

var logo = []string{
	"   _____      _       _       ____                            ",
	"  |_   _| __ (_)_   _(_) __ _|  _ \\ ___   ___  _ __ ___  ___  ",
	"    | || '__|| \\ \\ / / |/ _` | |_) / _ \\ / _ \\| '_ ` _ \\/ __| ",
	"    | || |   | |\\ V /| | (_| |  _ < (_) | (_) | | | | | \\__ \\ ",
	"    |_||_|   |_| \\_/ |_|\\__,_|_| \\_\\___/ \\___/|_| |_| |_|___/ ",
}

// showBanner prints the logo box. Unless skipped, it ends with the same
// 3-2-1 countdown players see before each question.
func showBanner(w io.Writer, skipCountdown bool) {
	border := strings.Repeat("═", bannerWidth)

	fmt.Fprintf(w, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Fprintf(w, "  %s║%s%-*s%s║%s\n", cyan, yellow, bannerWidth, line, cyan, reset)
	}
	fmt.Fprintf(w, "  %s╚%s╝%s\n", cyan, border, reset)

	if skipCountdown {
		fmt.Fprint(w, "\n")
		return
	}

	fmt.Fprintf(w, moveUp, 1)
	fmt.Fprintf(w, "%s  %s╠%s╣%s\n", clearLine, cyan, border, reset)
	for i := 3; i >= 1; i-- {
		fmt.Fprintf(w, "%s  %s║%s%s%s║%s\n", clearLine, cyan, magenta+bold, centered(fmt.Sprintf("%d", i)), cyan, reset)
		fmt.Fprintf(w, "%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
		time.Sleep(300 * time.Millisecond)
		fmt.Fprintf(w, moveUp, 2)
	}
	fmt.Fprintf(w, "%s  %s║%s%s%s║%s\n", clearLine, cyan, green+bold, centered("Let's play!"), cyan, reset)
	fmt.Fprintf(w, "%s  %s╚%s╝%s\n\n", clearLine, cyan, border, reset)
}

func centered(s string) string {
	pad := bannerWidth - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(w io.Writer, appLog logger.Logger) {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	case "ERROR":
		next = "debug"
	default:
		next = "info"
	}

	appLog.SetLevel(logger.ParseLevel(next))
	fmt.Fprintf(w, "%sLog level: %s%s%s\n", green, yellow, next, reset)
}

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp(w io.Writer) {
	fmt.Fprintf(w, "\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(w, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(w, "    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Fprintf(w, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(w, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// handleKey performs the action bound to key and reports whether the
// server should shut down
func handleKey(w io.Writer, key byte, appLog logger.Logger) bool {
	switch strings.ToLower(string(key)) {
	case "h":
		if appLog.IsHTTPLoggingEnabled() {
			appLog.DisableHTTPLogging()
			fmt.Fprintf(w, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			appLog.EnableHTTPLogging()
			fmt.Fprintf(w, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(w, appLog)
	case "?":
		printKeyboardHelp(w)
	case "q", "\x03": // Ctrl+C arrives as a byte once echo and line mode are off
		fmt.Fprintf(w, "%sShutting down server...%s\n", yellow, reset)
		return true
	}
	return false
}

// readKeys feeds bytes from r to handleKey until quit is requested or r fails
func readKeys(r io.Reader, w io.Writer, appLog logger.Logger, quit func()) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if handleKey(w, buf[0], appLog) {
			quit()
			return
		}
	}
}
