package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// A single connection serialises writers, which the conditional room
	// updates rely on, and keeps :memory: databases alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations. All timestamps are unix milliseconds.
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			round_type TEXT NOT NULL DEFAULT 'general',
			answer_type TEXT NOT NULL,
			text TEXT NOT NULL,
			options TEXT,
			answer_index INTEGER,
			answer_text TEXT,
			accepted_answers TEXT,
			explanation TEXT,
			audio_path TEXT,
			image_path TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS packs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			round_type TEXT NOT NULL DEFAULT 'general',
			description TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pack_questions (
			pack_id INTEGER NOT NULL,
			question_id INTEGER NOT NULL,
			PRIMARY KEY (pack_id, question_id),
			FOREIGN KEY (pack_id) REFERENCES packs(id) ON DELETE CASCADE,
			FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			phase TEXT NOT NULL DEFAULT 'lobby',
			question_ids TEXT NOT NULL DEFAULT '[]',
			question_index INTEGER NOT NULL DEFAULT 0,
			countdown_seconds INTEGER NOT NULL,
			answer_seconds INTEGER NOT NULL,
			reveal_delay_seconds INTEGER NOT NULL,
			reveal_seconds INTEGER NOT NULL,
			countdown_start_at INTEGER,
			open_at INTEGER,
			close_at INTEGER,
			reveal_at INTEGER,
			next_at INTEGER,
			audio_mode TEXT NOT NULL DEFAULT 'display',
			selection_strategy TEXT NOT NULL,
			round_filter TEXT NOT NULL DEFAULT 'mixed',
			selected_packs TEXT NOT NULL DEFAULT '[]',
			rounds TEXT NOT NULL DEFAULT '[]',
			total_questions INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			joined_at INTEGER NOT NULL,
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
			UNIQUE(room_id, name_key)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			option_index INTEGER,
			answer_text TEXT,
			is_correct BOOLEAN NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE,
			FOREIGN KEY (player_id) REFERENCES players(id) ON DELETE CASCADE,
			UNIQUE(room_id, player_id, question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS round_results (
			room_id TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			winner_player_id TEXT NOT NULL,
			winner_received_at INTEGER NOT NULL,
			PRIMARY KEY (room_id, question_id),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pack_questions_question ON pack_questions(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_players_room ON players(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_room_question ON answers(room_id, question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_updated ON rooms(updated_at)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// marshalList encodes a slice column; nil slices are stored as []
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList[T any](raw sql.NullString) ([]T, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var v []T
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return nil, err
	}
	return v, nil
}
