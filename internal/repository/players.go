package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// ==================== Player Methods ====================

// CreatePlayer inserts a player. A name already used in the room (compared on
// NameKey) returns ErrDuplicate.
func (r *Repository) CreatePlayer(ctx context.Context, p *models.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, room_id, name, name_key, score, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.RoomID, p.Name, p.NameKey, p.Score, toMillis(p.JoinedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetPlayer retrieves a player that belongs to the given room
func (r *Repository) GetPlayer(ctx context.Context, roomID, playerID string) (*models.Player, error) {
	var (
		p        models.Player
		joinedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, room_id, name, name_key, score, joined_at
		FROM players WHERE id = ? AND room_id = ?`, playerID, roomID).
		Scan(&p.ID, &p.RoomID, &p.Name, &p.NameKey, &p.Score, &joinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.JoinedAt = fromMillis(joinedAt)
	return &p, nil
}

// ListPlayers returns a room's players, highest score first, then by join order
func (r *Repository) ListPlayers(ctx context.Context, roomID string) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, room_id, name, name_key, score, joined_at
		FROM players WHERE room_id = ?
		ORDER BY score DESC, joined_at ASC, name ASC`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var (
			p        models.Player
			joinedAt int64
		)
		if err := rows.Scan(&p.ID, &p.RoomID, &p.Name, &p.NameKey, &p.Score, &joinedAt); err != nil {
			return nil, err
		}
		p.JoinedAt = fromMillis(joinedAt)
		players = append(players, p)
	}
	return players, rows.Err()
}

// CountPlayers returns the number of players in a room
func (r *Repository) CountPlayers(ctx context.Context, roomID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE room_id = ?`, roomID).Scan(&n)
	return n, err
}

// ==================== Answer Methods ====================

// RecordAnswer stores an answer and, when it is correct, awards a point and
// claims the round result if nobody has yet. A second answer from the same
// player for the same question returns ErrDuplicate and changes nothing.
// Unless the room is running with question index open at the answer's time,
// nothing is written and ErrAnswerWindowClosed is returned.
func (r *Repository) RecordAnswer(ctx context.Context, a *models.Answer, index int) error {
	var optionIndex sql.NullInt64
	if a.OptionIndex != nil {
		optionIndex = sql.NullInt64{Int64: int64(*a.OptionIndex), Valid: true}
	}
	var answerText sql.NullString
	if a.AnswerText != nil {
		answerText = sql.NullString{String: *a.AnswerText, Valid: true}
	}

	createdAt := toMillis(answerTime(a))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// the room row must still show this question open when the answer lands
	result, err := tx.ExecContext(ctx, `
		INSERT INTO answers (room_id, player_id, question_id, option_index, answer_text, is_correct, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (
			SELECT 1 FROM rooms
			WHERE id = ? AND phase = 'running' AND question_index = ?
				AND json_extract(question_ids, '$[' || question_index || ']') = ?
				AND open_at <= ? AND close_at > ?)`,
		a.RoomID, a.PlayerID, a.QuestionID, optionIndex, answerText, a.IsCorrect, createdAt,
		a.RoomID, index, a.QuestionID, createdAt, createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrAnswerWindowClosed
	}

	if a.IsCorrect {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET score = score + 1 WHERE id = ? AND room_id = ?`, a.PlayerID, a.RoomID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO round_results (room_id, question_id, winner_player_id, winner_received_at)
			VALUES (?, ?, ?, ?)`,
			a.RoomID, a.QuestionID, a.PlayerID, createdAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CountAnsweredPlayers returns how many distinct players answered a question
func (r *Repository) CountAnsweredPlayers(ctx context.Context, roomID string, questionID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT player_id) FROM answers WHERE room_id = ? AND question_id = ?`,
		roomID, questionID).Scan(&n)
	return n, err
}

// GetAnswerStats returns answered and correct counts for a question
func (r *Repository) GetAnswerStats(ctx context.Context, roomID string, questionID int64) (models.AnswerStats, error) {
	var stats models.AnswerStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
		FROM answers WHERE room_id = ? AND question_id = ?`,
		roomID, questionID).Scan(&stats.Answered, &stats.Correct)
	return stats, err
}

// GetRoundResult returns the first correct answer marker for a question
func (r *Repository) GetRoundResult(ctx context.Context, roomID string, questionID int64) (*models.RoundResult, error) {
	var (
		rr         models.RoundResult
		receivedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT room_id, question_id, winner_player_id, winner_received_at
		FROM round_results WHERE room_id = ? AND question_id = ?`, roomID, questionID).
		Scan(&rr.RoomID, &rr.QuestionID, &rr.WinnerPlayerID, &receivedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rr.WinnerReceivedAt = fromMillis(receivedAt)
	return &rr, nil
}

// answerTime is the timestamp recorded for an answer when none was supplied
func answerTime(a *models.Answer) time.Time {
	if a.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return a.CreatedAt
}
