//go:build windows

package main

import (
	"os"

	"golang.org/x/term"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

// listenForKeyboard reads keys on Windows. Without termios the console
// stays line buffered, so each key needs Enter.
func listenForKeyboard(appLog logger.Logger, quit func()) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	readKeys(os.Stdin, os.Stdout, appLog, quit)
}
