package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/triviarooms/internal/app"
	"github.com/abrezinsky/triviarooms/internal/auth"
	"github.com/abrezinsky/triviarooms/internal/config"
	"github.com/abrezinsky/triviarooms/internal/logger"
)

var (
	version = "dev"
)

func main() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.AdminSecret, "secret", cfg.AdminSecret, "Admin secret (auto-generated if not set)")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "logformat", cfg.LogFormat, "Log format (text, json)")
	flag.StringVar(&cfg.BaseURL, "baseurl", cfg.BaseURL, "Public URL used in join links (detected if not set)")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the question cache (in-memory if not set)")
	noAnimate := flag.Bool("noanimate", false, "Show logo only, skip countdown")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `TriviaRooms - Multiplayer Trivia Rooms

Usage:
  triviarooms [options]

Options:
  -port int        HTTP server port (default 8080, env TRIVIA_PORT)
  -db string       SQLite database path (default "trivia.db", env TRIVIA_DB_PATH)
  -secret str      Admin secret, auto-generated if not set (env TRIVIA_ADMIN_SECRET)
  -loglevel str    Log level: debug, info, warn, error (default "info")
  -logformat str   Log format: text, json (default "text")
  -baseurl str     Public URL used in join links (env TRIVIA_BASE_URL)
  -redis str       Redis address for the question cache (env TRIVIA_REDIS_ADDR)
  -noanimate       Show logo only, skip countdown
  -nokeyboard      Disable keyboard shortcuts
  -version         Show version and exit
  -help            Show this help message

Keyboard Shortcuts (when enabled):
  h                Toggle HTTP request logging
  l                Cycle log level (debug → info → warn → error)
  q                Quit server
  ?                Show keyboard help

Examples:
  triviarooms                               # Run on port 8080 with trivia.db
  triviarooms -port 9000                    # Run on port 9000
  triviarooms -secret quizmaster            # Use specific admin secret
  triviarooms -redis localhost:6379         # Share the question cache
  triviarooms -baseurl https://quiz.lan     # Fixed join URL for QR codes

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("triviarooms %s\n", version)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	showBanner(os.Stdout, *noAnimate)

	// Setup admin authentication
	if cfg.AdminSecret == "" {
		cfg.AdminSecret = auth.GeneratePassword()
	}
	adminAuth := auth.New(cfg.AdminSecret, nil)

	appLog := logger.NewWithOptions(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
	})

	a, err := app.New(appLog, cfg, adminAuth, nil)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			appLog.Error("Shutdown error", "error", err)
		}
	}()

	appLog.Info("Admin secret", "secret", cfg.AdminSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*noKeyboard {
		printKeyboardHelp(os.Stdout)
		go listenForKeyboard(appLog, stop)
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled (use -nokeyboard=false to enable)%s\n\n", yellow, reset)
	}

	if err := a.Run(ctx); err != nil {
		appLog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
