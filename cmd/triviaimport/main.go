package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/triviarooms/internal/importer"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/repository"
	"github.com/abrezinsky/triviarooms/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	defaultDB := os.Getenv("TRIVIA_DB_PATH")
	if defaultDB == "" {
		defaultDB = "trivia.db"
	}

	dbPath := flag.String("db", defaultDB, "SQLite database path")
	file := flag.String("file", "", "xlsx workbook to import (required)")
	sheet := flag.String("sheet", "", "Import only this sheet")
	dryRun := flag.Bool("dryrun", false, "Validate rows without writing")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `triviaimport - Load questions from an xlsx workbook

Usage:
  triviaimport -file questions.xlsx [options]

The first row of each sheet is a header. Recognized columns:
  pack, round_type, answer_type, text, option_a, option_b, option_c,
  option_d, answer, accepted, explanation, audio_path, image_path

Only text and answer are required. Rows without a pack use the sheet
name. Multiple choice answers may be 1-4, A-D or the option text;
accepted answers for text questions are separated by "|".

Options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	repo, err := repository.New(*dbPath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer repo.Close()

	questions := services.NewQuestionService(appLog, repo, nil, 0)
	im := importer.New(appLog, questions)

	summary, err := im.ImportFile(context.Background(), *file, importer.Options{
		Sheet:  *sheet,
		DryRun: *dryRun,
	})
	if summary != nil {
		printSummary(summary, *dryRun)
	}
	if err != nil {
		log.Fatal("Import failed: ", err)
	}
	if len(summary.Errors) > 0 {
		os.Exit(1)
	}
}

func printSummary(s *importer.Summary, dryRun bool) {
	verb := "Imported"
	if dryRun {
		verb = "Validated"
	}
	fmt.Printf("%s %d questions (%d blank rows skipped)\n", verb, s.Imported, s.Skipped)

	names := make([]string, 0, len(s.Packs))
	for name := range s.Packs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-30s %d\n", name, s.Packs[name])
	}

	if len(s.Errors) > 0 {
		fmt.Printf("\n%d rows rejected:\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Printf("  %s\n", e.Error())
		}
	}
}
