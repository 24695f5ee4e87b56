package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
)

// ==================== Room Methods ====================

const roomColumns = `id, code, phase, question_ids, question_index,
	countdown_seconds, answer_seconds, reveal_delay_seconds, reveal_seconds,
	countdown_start_at, open_at, close_at, reveal_at, next_at,
	audio_mode, selection_strategy, round_filter, selected_packs, rounds, total_questions,
	created_at, updated_at`

// CreateRoom inserts a new room. A code collision returns ErrDuplicate so the
// caller can retry with a fresh code.
func (r *Repository) CreateRoom(ctx context.Context, room *models.Room) error {
	questionIDs, err := marshalList(room.QuestionIDs)
	if err != nil {
		return err
	}
	selectedPacks, err := marshalList(room.SelectedPacks)
	if err != nil {
		return err
	}
	rounds, err := marshalList(room.Rounds)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Code, string(room.Phase), questionIDs, room.QuestionIndex,
		room.CountdownSeconds, room.AnswerSeconds, room.RevealDelaySeconds, room.RevealSeconds,
		nullMillis(room.CountdownStartAt), nullMillis(room.OpenAt), nullMillis(room.CloseAt),
		nullMillis(room.RevealAt), nullMillis(room.NextAt),
		string(room.AudioMode), string(room.Strategy), string(room.RoundFilter),
		selectedPacks, rounds, room.TotalQuestions,
		toMillis(room.CreatedAt), toMillis(room.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetRoomByCode retrieves a room by its join code. Codes are stored upper-case.
func (r *Repository) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE code = ?`, code)
	room, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return room, err
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var (
		room                                  models.Room
		phase, audioMode, strategy, filter    string
		questionIDs, selectedPacks, rounds    sql.NullString
		countdownStart, openAt, closeAt       sql.NullInt64
		revealAt, nextAt                      sql.NullInt64
		createdAt, updatedAt                  int64
	)
	err := row.Scan(&room.ID, &room.Code, &phase, &questionIDs, &room.QuestionIndex,
		&room.CountdownSeconds, &room.AnswerSeconds, &room.RevealDelaySeconds, &room.RevealSeconds,
		&countdownStart, &openAt, &closeAt, &revealAt, &nextAt,
		&audioMode, &strategy, &filter, &selectedPacks, &rounds, &room.TotalQuestions,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	room.Phase = models.Phase(phase)
	room.AudioMode = models.AudioMode(audioMode)
	room.Strategy = models.SelectionStrategy(strategy)
	room.RoundFilter = models.RoundFilter(filter)
	room.CountdownStartAt = timePtr(countdownStart)
	room.OpenAt = timePtr(openAt)
	room.CloseAt = timePtr(closeAt)
	room.RevealAt = timePtr(revealAt)
	room.NextAt = timePtr(nextAt)
	room.CreatedAt = fromMillis(createdAt)
	room.UpdatedAt = fromMillis(updatedAt)

	if room.QuestionIDs, err = unmarshalList[int64](questionIDs); err != nil {
		return nil, err
	}
	if room.SelectedPacks, err = unmarshalList[int64](selectedPacks); err != nil {
		return nil, err
	}
	if room.Rounds, err = unmarshalList[models.PackRound](rounds); err != nil {
		return nil, err
	}
	return &room, nil
}

// execChanged runs a conditional update and reports whether it matched a row
func (r *Repository) execChanged(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// StartRoom moves a lobby room to running at question 0 with the given schedule.
// Returns false if the room was no longer in the lobby.
func (r *Repository) StartRoom(ctx context.Context, roomID string, s models.Schedule, now time.Time) (bool, error) {
	return r.execChanged(ctx, `
		UPDATE rooms SET phase = 'running', question_index = 0,
			countdown_start_at = ?, open_at = ?, close_at = ?, reveal_at = ?, next_at = ?,
			updated_at = ?
		WHERE id = ? AND phase = 'lobby'`,
		toMillis(s.CountdownStartAt), toMillis(s.OpenAt), toMillis(s.CloseAt),
		toMillis(s.RevealAt), toMillis(s.NextAt), toMillis(now), roomID)
}

// AdvanceRoom moves a running room from fromIndex to the next question. It only
// applies while the room is still on fromIndex and next_at has passed, so
// concurrent callers advance at most once.
func (r *Repository) AdvanceRoom(ctx context.Context, roomID string, fromIndex int, s models.Schedule, now time.Time) (bool, error) {
	return r.execChanged(ctx, `
		UPDATE rooms SET question_index = question_index + 1,
			countdown_start_at = ?, open_at = ?, close_at = ?, reveal_at = ?, next_at = ?,
			updated_at = ?
		WHERE id = ? AND phase = 'running' AND question_index = ? AND next_at <= ?`,
		toMillis(s.CountdownStartAt), toMillis(s.OpenAt), toMillis(s.CloseAt),
		toMillis(s.RevealAt), toMillis(s.NextAt), toMillis(now),
		roomID, fromIndex, toMillis(now))
}

// FinishRoom marks a running room finished once its last question has run out.
// Timestamps and the index are left as they were.
func (r *Repository) FinishRoom(ctx context.Context, roomID string, fromIndex int, now time.Time) (bool, error) {
	return r.execChanged(ctx, `
		UPDATE rooms SET phase = 'finished', updated_at = ?
		WHERE id = ? AND phase = 'running' AND question_index = ? AND next_at <= ?`,
		toMillis(now), roomID, fromIndex, toMillis(now))
}

// CloseAnswerWindow ends the answer window early. It only applies while the
// window for question index is open at now.
func (r *Repository) CloseAnswerWindow(ctx context.Context, roomID string, index int, now, revealAt, nextAt time.Time) (bool, error) {
	return r.execChanged(ctx, `
		UPDATE rooms SET close_at = ?, reveal_at = ?, next_at = ?, updated_at = ?
		WHERE id = ? AND phase = 'running' AND question_index = ?
			AND open_at <= ? AND close_at > ?`,
		toMillis(now), toMillis(revealAt), toMillis(nextAt), toMillis(now),
		roomID, index, toMillis(now), toMillis(now))
}

// ResetRoom returns a room to the lobby with a new question list, clearing its
// answers and round results and zeroing scores, in one transaction.
func (r *Repository) ResetRoom(ctx context.Context, roomID string, questionIDs []int64, now time.Time) error {
	ids, err := marshalList(questionIDs)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE rooms SET phase = 'lobby', question_ids = ?, question_index = 0,
			countdown_start_at = NULL, open_at = NULL, close_at = NULL, reveal_at = NULL, next_at = NULL,
			updated_at = ?
		WHERE id = ?`, ids, toMillis(now), roomID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM round_results WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE players SET score = 0 WHERE room_id = ?`, roomID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteRoomsIdleSince removes rooms not updated since cutoff, along with their
// players, answers and round results. Returns the number of rooms removed.
func (r *Repository) DeleteRoomsIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stale := `SELECT id FROM rooms WHERE updated_at < ?`
	ms := toMillis(cutoff)
	for _, table := range []string{"answers", "round_results", "players"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE room_id IN (`+stale+`)`, ms); err != nil {
			return 0, err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE updated_at < ?`, ms)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
