package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file CheckpointStore, adapted from the teacher's
// store.SQLiteStore. It is the recommended durable store for a single
// scheduler process (spec §1's non-goal of horizontal scale-out makes a
// single-writer SQLite file a good fit, not a limitation).
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes; SQLite allows one writer at a time
}

// NewSQLiteStore opens (creating if absent) the database at path and
// ensures the checkpoints table exists. Pass ":memory:" for an ephemeral
// in-process database, matching the prototype's SQLiteCheckpointRepository.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS checkpoints (
			workflow_id   TEXT PRIMARY KEY,
			current_step  INTEGER NOT NULL,
			state         TEXT NOT NULL,
			context_data  TEXT NOT NULL,
			metadata      TEXT NOT NULL,
			updated_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: create table: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, checkpoint *Checkpoint) error {
	contextData, err := json.Marshal(checkpoint.ContextData)
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal context_data: %w", err)}
	}
	metadata, err := json.Marshal(checkpoint.Metadata)
	if err != nil {
		return &SerializationError{Cause: fmt.Errorf("marshal metadata: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	const upsert = `
		INSERT INTO checkpoints (workflow_id, current_step, state, context_data, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(workflow_id) DO UPDATE SET
			current_step = excluded.current_step,
			state        = excluded.state,
			context_data = excluded.context_data,
			metadata     = excluded.metadata,
			updated_at   = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, upsert,
		checkpoint.WorkflowID, checkpoint.CurrentStep, string(checkpoint.State), contextData, metadata,
	); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, workflowID string) (*Checkpoint, error) {
	const query = `
		SELECT workflow_id, current_step, state, context_data, metadata, updated_at
		FROM checkpoints WHERE workflow_id = ?
	`
	row := s.db.QueryRowContext(ctx, query, workflowID)

	var (
		cp                       Checkpoint
		state                    string
		contextData, metadataRaw string
	)
	if err := row.Scan(&cp.WorkflowID, &cp.CurrentStep, &state, &contextData, &metadataRaw, &cp.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	cp.State = State(state)

	if err := json.Unmarshal([]byte(contextData), &cp.ContextData); err != nil {
		return nil, &SerializationError{Cause: fmt.Errorf("unmarshal context_data: %w", err)}
	}
	if err := json.Unmarshal([]byte(metadataRaw), &cp.Metadata); err != nil {
		return nil, &SerializationError{Cause: fmt.Errorf("unmarshal metadata: %w", err)}
	}
	return &cp, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE workflow_id = ?`, workflowID); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
