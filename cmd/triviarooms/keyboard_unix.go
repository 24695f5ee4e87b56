//go:build linux || darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

// listenForKeyboard reads single keystrokes from the terminal and performs
// actions. It does nothing when stdin is not a terminal.
func listenForKeyboard(appLog logger.Logger, quit func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	// Disable line buffering and echo but keep output processing so \n
	// still returns the cursor
	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return
	}

	readKeys(os.Stdin, os.Stdout, appLog, func() {
		unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)
		quit()
	})
}
