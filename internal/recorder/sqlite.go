package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed interaction store.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		model TEXT NOT NULL,
		system_prompt TEXT,
		user_prompt TEXT NOT NULL,
		output TEXT,
		error TEXT,
		prompt_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interactions_run_id ON interactions(run_id);`)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveInteraction inserts one interaction record.
func (s *SQLiteStore) SaveInteraction(ctx context.Context, interaction *Interaction) error {
	query := `INSERT INTO interactions (
		id, run_id, stage, model, system_prompt, user_prompt, output, error,
		prompt_tokens, output_tokens, duration_ns, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		interaction.ID, interaction.RunID, interaction.Stage, interaction.Model,
		nullable(interaction.SystemPrompt), interaction.UserPrompt,
		nullable(interaction.Output), nullable(interaction.Error),
		interaction.PromptTokens, interaction.OutputTokens,
		int64(interaction.Duration), interaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

// ListInteractions returns all interactions for a run, oldest first.
func (s *SQLiteStore) ListInteractions(ctx context.Context, runID string) ([]*Interaction, error) {
	query := `SELECT id, run_id, stage, model, system_prompt, user_prompt, output, error,
		prompt_tokens, output_tokens, duration_ns, created_at
	FROM interactions WHERE run_id = ? ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		var it Interaction
		var systemPrompt, output, errMsg sql.NullString
		var durationNS int64
		var createdAt time.Time

		if err := rows.Scan(&it.ID, &it.RunID, &it.Stage, &it.Model,
			&systemPrompt, &it.UserPrompt, &output, &errMsg,
			&it.PromptTokens, &it.OutputTokens, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}

		it.SystemPrompt = systemPrompt.String
		it.Output = output.String
		it.Error = errMsg.String
		it.Duration = time.Duration(durationNS)
		it.CreatedAt = createdAt
		interactions = append(interactions, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}

	return interactions, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
