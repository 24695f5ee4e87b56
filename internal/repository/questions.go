package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// ==================== Question Methods ====================

const questionColumns = `id, round_type, answer_type, text, options, answer_index, answer_text,
	accepted_answers, explanation, audio_path, image_path, created_at`

// CreateQuestion inserts a question and sets its ID
func (r *Repository) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	var optionsJSON, acceptedJSON sql.NullString
	if len(q.Options) > 0 {
		s, err := marshalList(q.Options)
		if err != nil {
			return 0, err
		}
		optionsJSON = sql.NullString{String: s, Valid: true}
	}
	if len(q.AcceptedAnswers) > 0 {
		s, err := marshalList(q.AcceptedAnswers)
		if err != nil {
			return 0, err
		}
		acceptedJSON = sql.NullString{String: s, Valid: true}
	}

	var answerIndex sql.NullInt64
	if q.AnswerIndex != nil {
		answerIndex = sql.NullInt64{Int64: int64(*q.AnswerIndex), Valid: true}
	}

	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (round_type, answer_type, text, options, answer_index, answer_text,
			accepted_answers, explanation, audio_path, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(q.RoundType), string(q.AnswerType), q.Text, optionsJSON, answerIndex,
		nullString(q.AnswerText), acceptedJSON, nullString(q.Explanation),
		nullString(q.AudioPath), nullString(q.ImagePath), toMillis(q.CreatedAt))
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	q.ID = id
	return id, nil
}

// GetQuestion retrieves a question by ID
func (r *Repository) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return q, err
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var (
		q                                         models.Question
		roundType, answerType                     string
		options, accepted                         sql.NullString
		answerIndex                               sql.NullInt64
		answerText, explanation, audioPath, image sql.NullString
		createdAt                                 int64
	)
	if err := row.Scan(&q.ID, &roundType, &answerType, &q.Text, &options, &answerIndex,
		&answerText, &accepted, &explanation, &audioPath, &image, &createdAt); err != nil {
		return nil, err
	}

	q.RoundType = models.RoundType(roundType)
	q.AnswerType = models.AnswerType(answerType)
	q.AnswerText = answerText.String
	q.Explanation = explanation.String
	q.AudioPath = audioPath.String
	q.ImagePath = image.String
	q.CreatedAt = fromMillis(createdAt)
	if answerIndex.Valid {
		idx := int(answerIndex.Int64)
		q.AnswerIndex = &idx
	}

	var err error
	if q.Options, err = unmarshalList[string](options); err != nil {
		return nil, err
	}
	if q.AcceptedAnswers, err = unmarshalList[string](accepted); err != nil {
		return nil, err
	}
	return &q, nil
}

// ==================== Pack Methods ====================

// CreatePack inserts a pack. A name clash returns ErrDuplicate.
func (r *Repository) CreatePack(ctx context.Context, p *models.Pack) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO packs (name, round_type, description, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Name, string(p.RoundType), nullString(p.Description), p.SortOrder, toMillis(time.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

// GetPackByName looks a pack up by its exact name
func (r *Repository) GetPackByName(ctx context.Context, name string) (*models.Pack, error) {
	var (
		p           models.Pack
		roundType   string
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT p.id, p.name, p.round_type, p.description, p.sort_order,
			(SELECT COUNT(*) FROM pack_questions pq WHERE pq.pack_id = p.id)
		FROM packs p WHERE p.name = ?`, name).
		Scan(&p.ID, &p.Name, &roundType, &description, &p.SortOrder, &p.QuestionCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.RoundType = models.RoundType(roundType)
	p.Description = description.String
	return &p, nil
}

// ListPacks returns all packs with their question counts
func (r *Repository) ListPacks(ctx context.Context) ([]models.Pack, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.round_type, p.description, p.sort_order, COUNT(pq.question_id)
		FROM packs p
		LEFT JOIN pack_questions pq ON pq.pack_id = p.id
		GROUP BY p.id
		ORDER BY p.sort_order, p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []models.Pack
	for rows.Next() {
		var (
			p           models.Pack
			roundType   string
			description sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &roundType, &description, &p.SortOrder, &p.QuestionCount); err != nil {
			return nil, err
		}
		p.RoundType = models.RoundType(roundType)
		p.Description = description.String
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// AddQuestionToPack links a question to a pack. Linking twice is a no-op;
// a missing pack or question returns ErrNotFound.
func (r *Repository) AddQuestionToPack(ctx context.Context, packID, questionID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pack_questions (pack_id, question_id) VALUES (?, ?)`, packID, questionID)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return ErrNotFound
	}
	return err
}

// ListQuestionsForPacks returns one entry per (question, pack) link in the given packs
func (r *Repository) ListQuestionsForPacks(ctx context.Context, packIDs []int64) ([]models.PoolEntry, error) {
	if len(packIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(packIDs)), ",")
	args := make([]any, len(packIDs))
	for i, id := range packIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pq.question_id, pq.pack_id, q.round_type
		FROM pack_questions pq
		JOIN questions q ON q.id = pq.question_id
		WHERE pq.pack_id IN (`+placeholders+`)
		ORDER BY pq.pack_id, pq.question_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []models.PoolEntry
	for rows.Next() {
		var (
			e         models.PoolEntry
			roundType string
		)
		if err := rows.Scan(&e.QuestionID, &e.PackID, &roundType); err != nil {
			return nil, err
		}
		e.RoundType = models.RoundType(roundType)
		pool = append(pool, e)
	}
	return pool, rows.Err()
}
