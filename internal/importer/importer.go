package importer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abrezinsky/triviarooms/internal/errors"
	"github.com/abrezinsky/triviarooms/internal/logger"
	"github.com/abrezinsky/triviarooms/internal/models"
)

// Recognized header names. Headers are matched case-insensitively; unknown
// columns are ignored.
const (
	colPack        = "pack"
	colRoundType   = "round_type"
	colAnswerType  = "answer_type"
	colText        = "text"
	colOptionA     = "option_a"
	colOptionB     = "option_b"
	colOptionC     = "option_c"
	colOptionD     = "option_d"
	colAnswer      = "answer"
	colAccepted    = "accepted"
	colExplanation = "explanation"
	colAudioPath   = "audio_path"
	colImagePath   = "image_path"
)

var optionColumns = []string{colOptionA, colOptionB, colOptionC, colOptionD}

// ErrMissingColumn is returned when a sheet lacks a required header
var ErrMissingColumn = stderrors.New("missing required column")

// QuestionStore is the part of the question bank the importer writes to
type QuestionStore interface {
	EnsurePack(ctx context.Context, name string, roundType models.RoundType) (*models.Pack, error)
	CreateQuestion(ctx context.Context, q *models.Question, packIDs []int64) (int64, error)
}

// Options controls which sheets are read
type Options struct {
	// Sheet limits the import to one sheet. Empty imports every sheet.
	Sheet string
	// DryRun validates rows without writing anything
	DryRun bool
}

// RowError describes a row that could not be imported. Row is 1-based as
// shown in spreadsheet software.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

// Summary reports the outcome of an import
type Summary struct {
	Imported int
	Skipped  int
	Packs    map[string]int
	Errors   []RowError
}

// Importer loads question banks from xlsx workbooks. The first row of each
// sheet is the header; rows without a pack column use the sheet name.
type Importer struct {
	log   logger.Logger
	store QuestionStore
	packs map[string]int64
}

// New creates an importer writing to store
func New(log logger.Logger, store QuestionStore) *Importer {
	return &Importer{
		log:   log.With("component", "importer"),
		store: store,
		packs: make(map[string]int64),
	}
}

// ImportFile opens path and imports it
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return im.Import(ctx, f, opts)
}

// Import reads a workbook and stores every valid row. Invalid rows are
// collected in the summary and do not stop the import.
func (im *Importer) Import(ctx context.Context, r io.Reader, opts Options) (*Summary, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if opts.Sheet != "" {
		if idx, _ := wb.GetSheetIndex(opts.Sheet); idx < 0 {
			return nil, errors.NotFoundf("sheet %q not found", opts.Sheet)
		}
		sheets = []string{opts.Sheet}
	}

	summary := &Summary{Packs: make(map[string]int)}
	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return summary, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if err := im.importSheet(ctx, sheet, rows, opts, summary); err != nil {
			return summary, err
		}
	}

	im.log.Info("Import finished",
		"imported", summary.Imported, "skipped", summary.Skipped, "errors", len(summary.Errors))
	return summary, nil
}

func (im *Importer) importSheet(ctx context.Context, sheet string, rows [][]string, opts Options, summary *Summary) error {
	header := parseHeader(rows[0])
	for _, required := range []string{colText, colAnswer} {
		if _, ok := header[required]; !ok {
			return fmt.Errorf("sheet %s: %w %q", sheet, ErrMissingColumn, required)
		}
	}
	im.log.Debug("Importing sheet", "sheet", sheet, "rows", len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2
		rec := record{header: header, row: row}
		if rec.blank() {
			summary.Skipped++
			continue
		}

		q, packName, err := rec.question(sheet)
		if err != nil {
			summary.Errors = append(summary.Errors, RowError{Sheet: sheet, Row: rowNum, Err: err})
			continue
		}
		if opts.DryRun {
			summary.Imported++
			summary.Packs[packName]++
			continue
		}

		packID, err := im.packID(ctx, packName, q.RoundType)
		if err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, rowNum, err)
		}
		if _, err := im.store.CreateQuestion(ctx, q, []int64{packID}); err != nil {
			if errors.KindOf(err) == errors.ErrInternal {
				return fmt.Errorf("sheet %s row %d: %w", sheet, rowNum, err)
			}
			summary.Errors = append(summary.Errors, RowError{Sheet: sheet, Row: rowNum, Err: err})
			continue
		}
		summary.Imported++
		summary.Packs[packName]++
	}
	return nil
}

func (im *Importer) packID(ctx context.Context, name string, roundType models.RoundType) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := im.packs[key]; ok {
		return id, nil
	}
	pack, err := im.store.EnsurePack(ctx, name, roundType)
	if err != nil {
		return 0, err
	}
	im.packs[key] = pack.ID
	return pack.ID, nil
}

func parseHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key == "" {
			continue
		}
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}
	return header
}

// record is one data row addressed by header name
type record struct {
	header map[string]int
	row    []string
}

// get returns the trimmed cell for column, or "" if the column is absent
// or the row is short
func (r record) get(column string) string {
	idx, ok := r.header[column]
	if !ok || idx >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[idx])
}

func (r record) blank() bool {
	for _, cell := range r.row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (r record) question(sheet string) (*models.Question, string, error) {
	packName := r.get(colPack)
	if packName == "" {
		packName = sheet
	}

	roundType := models.RoundType(strings.ToLower(r.get(colRoundType)))
	if roundType == "" {
		roundType = models.RoundGeneral
	}
	if !roundType.Valid() {
		return nil, "", fmt.Errorf("unknown round type %q", roundType)
	}

	q := &models.Question{
		RoundType:   roundType,
		Text:        r.get(colText),
		Explanation: r.get(colExplanation),
		AudioPath:   r.get(colAudioPath),
		ImagePath:   r.get(colImagePath),
	}
	if q.Text == "" {
		return nil, "", fmt.Errorf("text is empty")
	}

	var options []string
	for _, col := range optionColumns {
		if v := r.get(col); v != "" {
			options = append(options, v)
		}
	}

	answerType := models.AnswerType(strings.ToLower(r.get(colAnswerType)))
	if answerType == "" {
		answerType = models.AnswerText
		if len(options) > 0 {
			answerType = models.AnswerMCQ
		}
	}

	answer := r.get(colAnswer)
	if answer == "" {
		return nil, "", fmt.Errorf("answer is empty")
	}

	switch answerType {
	case models.AnswerMCQ:
		if len(options) != models.MCQOptionCount {
			return nil, "", fmt.Errorf("multiple choice rows need %d options, got %d", models.MCQOptionCount, len(options))
		}
		idx, err := answerIndex(answer, options)
		if err != nil {
			return nil, "", err
		}
		q.AnswerType = models.AnswerMCQ
		q.Options = options
		q.AnswerIndex = &idx
	case models.AnswerText:
		q.AnswerType = models.AnswerText
		q.AnswerText = answer
		for _, alt := range strings.Split(r.get(colAccepted), "|") {
			if alt = strings.TrimSpace(alt); alt != "" {
				q.AcceptedAnswers = append(q.AcceptedAnswers, alt)
			}
		}
	default:
		return nil, "", fmt.Errorf("unknown answer type %q", answerType)
	}
	return q, packName, nil
}

// answerIndex accepts 1-4, A-D or the exact text of one option
func answerIndex(answer string, options []string) (int, error) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return 0, fmt.Errorf("answer %d out of range 1-%d", n, len(options))
		}
		return n - 1, nil
	}
	if len(answer) == 1 {
		letter := strings.ToUpper(answer)[0]
		if letter >= 'A' && int(letter-'A') < len(options) {
			return int(letter - 'A'), nil
		}
	}
	for i, opt := range options {
		if strings.EqualFold(opt, answer) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("answer %q does not match any option", answer)
}
