//go:build !linux && !darwin && !windows

package main

import "github.com/abrezinsky/triviarooms/internal/logger"

func listenForKeyboard(appLog logger.Logger, quit func()) {}
